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

package model

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// RunCommandRequest is one command line typed into the shell.
type RunCommandRequest struct {
	Command string `json:"command" validate:"required"`
}

func (r *RunCommandRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CommandResponse is the synchronous reply to a command line.
type CommandResponse struct {
	Command      string `json:"command"`
	Text         string `json:"text"`
	Action       string `json:"action"`
	Prompt       string `json:"prompt"`
	Color        string `json:"color"`
	EditID       string `json:"edit_id,omitempty"`
	EditContents string `json:"edit_contents,omitempty"`
}

// CompleteRequest asks for the completion of a partial line. Next cycles to
// the match after the previous completion.
type CompleteRequest struct {
	Input string `json:"input" validate:"required"`
	Next  bool   `json:"next,omitempty"`
}

func (r *CompleteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type CompleteResponse struct {
	Valid      bool     `json:"valid"`
	Line       string   `json:"line"`
	Completion string   `json:"completion,omitempty"`
	SearchPath string   `json:"search_path,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// EditRequest writes the buffer of an edit session back to its file.
type EditRequest struct {
	ID       string `json:"id" validate:"required,uuid"`
	Contents string `json:"contents"`
}

func (r *EditRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// InterruptResponse reports whether a running ping was stopped.
type InterruptResponse struct {
	Interrupted bool `json:"interrupted"`
}

type ServerStreamEventType string

const (
	StreamEventTypeInit     ServerStreamEventType = "init"
	StreamEventTypeStdout   ServerStreamEventType = "stdout"
	StreamEventTypeError    ServerStreamEventType = "error"
	StreamEventTypeComplete ServerStreamEventType = "execution_complete"
	StreamEventTypePing     ServerStreamEventType = "ping"
)

// ServerStreamEvent is emitted to clients over SSE.
type ServerStreamEvent struct {
	Type          ServerStreamEventType `json:"type,omitempty"`
	Text          string                `json:"text,omitempty"`
	ExecutionTime int64                 `json:"execution_time,omitempty"`
	Timestamp     int64                 `json:"timestamp,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// ToJSON serializes the event for streaming.
func (s ServerStreamEvent) ToJSON() []byte {
	bytes, _ := json.Marshal(s)
	return bytes
}
