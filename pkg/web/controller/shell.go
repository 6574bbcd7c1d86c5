// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package controller

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/flag"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/web/model"
)

// ShellController serves command execution, completion and session management.
type ShellController struct {
	*basicController

	shell  *shell.Dispatcher
	engine *autocomplete.Engine

	// chunkWriter serializes SSE event writes to prevent interleaved output.
	chunkWriter sync.Mutex
}

func NewShellController(ctx *gin.Context, d *shell.Dispatcher, engine *autocomplete.Engine) *ShellController {
	return &ShellController{
		basicController: newBasicController(ctx),
		shell:           d,
		engine:          engine,
	}
}

// RunCommand executes one command line. Pings are streamed via SSE, every
// other command replies with JSON.
func (c *ShellController) RunCommand() {
	var request model.RunCommandRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}

	err := request.Validate()
	if err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("invalid request, validation error %v", err),
		)
		return
	}

	ctx := c.ctx.Request.Context()
	out := newAsyncOutput()
	resp := c.shell.Execute(ctx, request.Command, out.observer())
	c.engine.Reset()
	if resp.Action != shell.ActionPing {
		c.RespondSuccess(c.commandResponse(resp))
		return
	}

	c.setupSSEResponse()
	c.streamPing(ctx, resp.Text, out)

	time.Sleep(flag.ApiGracefulShutdownTimeout)
}

// InterruptCommand stops the running ping.
func (c *ShellController) InterruptCommand() {
	c.RespondSuccess(model.InterruptResponse{Interrupted: c.shell.Interrupt()})
}

// Complete autocompletes a partial command line.
func (c *ShellController) Complete() {
	var request model.CompleteRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("invalid request, validation error %v", err),
		)
		return
	}

	c.RespondSuccess(completeResponse(c.engine.Complete(request.Input, request.Next)))
}

// Edit commits the buffer of an edit session.
func (c *ShellController) Edit() {
	var request model.EditRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("invalid request, validation error %v", err),
		)
		return
	}

	c.RespondSuccess(c.commandResponse(c.shell.CommitEdit(request.ID, request.Contents)))
}

// GetSession returns a snapshot of the session.
func (c *ShellController) GetSession() {
	c.RespondSuccess(c.shell.Snapshot())
}

// SaveSession persists the session to the snapshot store.
func (c *ShellController) SaveSession() {
	if err := c.shell.Save(c.ctx.Request.Context()); err != nil {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error saving session. %v", err),
		)
		return
	}
	c.RespondSuccess(nil)
}

// LoadSession replaces the session with the stored snapshot.
func (c *ShellController) LoadSession() {
	if err := c.shell.Load(c.ctx.Request.Context()); err != nil {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error loading session. %v", err),
		)
		return
	}
	c.engine.Reset()
	c.RespondSuccess(c.shell.Snapshot())
}

// DeleteSession removes the stored snapshot and resets the session.
func (c *ShellController) DeleteSession() {
	if err := c.shell.DeleteSave(c.ctx.Request.Context()); err != nil {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error deleting session. %v", err),
		)
		return
	}
	c.engine.Reset()
	c.RespondSuccess(nil)
}

func (c *ShellController) commandResponse(resp shell.Response) model.CommandResponse {
	return model.CommandResponse{
		Command:      string(resp.Command),
		Text:         resp.Text,
		Action:       string(resp.Action),
		Prompt:       c.shell.Prompt(),
		Color:        c.shell.Color(),
		EditID:       resp.EditID,
		EditContents: resp.EditContents,
	}
}

func completeResponse(result autocomplete.Result) model.CompleteResponse {
	return model.CompleteResponse{
		Valid:      result.Valid,
		Line:       result.Line,
		Completion: result.Completion,
		SearchPath: result.SearchPath,
		Candidates: result.Candidates,
	}
}
