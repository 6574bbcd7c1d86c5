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
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/web/model"
)

const terminalWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// TerminalController drives the shell over a websocket, one JSON frame per
// message.
type TerminalController struct {
	*basicController

	shell  *shell.Dispatcher
	engine *autocomplete.Engine

	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool

	// active is the ping started on this connection, nil when idle.
	active *terminalPing
}

type terminalPing struct {
	done bool
}

func NewTerminalController(ctx *gin.Context, d *shell.Dispatcher, engine *autocomplete.Engine) *TerminalController {
	return &TerminalController{
		basicController: newBasicController(ctx),
		shell:           d,
		engine:          engine,
	}
}

// Serve upgrades the request and runs the read loop until the client leaves.
func (c *TerminalController) Serve() {
	conn, err := upgrader.Upgrade(c.ctx.Writer, c.ctx.Request, nil)
	if err != nil {
		log.Error("terminal upgrade failed: %v", err)
		return
	}
	c.conn = conn
	defer c.close()

	c.send(model.TerminalMessage{
		Type:   model.TerminalOutput,
		Action: string(shell.ActionNone),
		Prompt: c.shell.Prompt(),
		Color:  c.shell.Color(),
	})

	for {
		var msg model.TerminalMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Warn("terminal read failed: %v", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *TerminalController) handle(msg model.TerminalMessage) {
	switch msg.Type {
	case model.TerminalInput:
		run := &terminalPing{}
		resp := c.shell.Execute(c.ctx.Request.Context(), msg.Text, shell.ObserverFuncs{
			Output: func(line string) {
				c.send(model.TerminalMessage{Type: model.TerminalAsync, Text: line})
			},
			Complete: func() {
				c.finishPing(run)
				c.send(model.TerminalMessage{Type: model.TerminalAsyncDone})
			},
		})
		c.engine.Reset()
		if resp.Action == shell.ActionPing {
			c.startPing(run)
		}
		c.reply(resp)
	case model.TerminalComplete:
		result := completeResponse(c.engine.Complete(msg.Text, msg.Next))
		c.send(model.TerminalMessage{Type: model.TerminalCompletion, Completion: &result})
	case model.TerminalInterrupt:
		c.shell.Interrupt()
	case model.TerminalEdit:
		c.reply(c.shell.CommitEdit(msg.EditID, msg.EditContents))
	default:
		c.send(model.TerminalMessage{Type: model.TerminalError, Text: "unknown message type " + string(msg.Type)})
	}
}

func (c *TerminalController) reply(resp shell.Response) {
	c.send(model.TerminalMessage{
		Type:         model.TerminalOutput,
		Text:         resp.Text,
		Action:       string(resp.Action),
		Prompt:       c.shell.Prompt(),
		Color:        c.shell.Color(),
		EditID:       resp.EditID,
		EditContents: resp.EditContents,
	})
}

// startPing records run unless it already completed.
func (c *TerminalController) startPing(run *terminalPing) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if !run.done {
		c.active = run
	}
}

func (c *TerminalController) finishPing(run *terminalPing) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	run.done = true
	if c.active == run {
		c.active = nil
	}
}

func (c *TerminalController) send(msg model.TerminalMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed || c.conn == nil {
		return
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(terminalWriteTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Warn("terminal write failed: %v", err)
	}
}

func (c *TerminalController) close() {
	c.writeMu.Lock()
	pinging := c.active != nil
	c.writeMu.Unlock()
	if pinging {
		c.shell.Interrupt()
	}

	c.writeMu.Lock()
	c.closed = true
	c.writeMu.Unlock()
	_ = c.conn.Close()
}
