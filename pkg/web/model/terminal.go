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

// TerminalMessageType tags frames on the terminal websocket.
type TerminalMessageType string

const (
	// client to server
	TerminalInput     TerminalMessageType = "input"
	TerminalComplete  TerminalMessageType = "complete"
	TerminalInterrupt TerminalMessageType = "interrupt"
	TerminalEdit      TerminalMessageType = "edit"

	// server to client
	TerminalOutput     TerminalMessageType = "output"
	TerminalAsync      TerminalMessageType = "async"
	TerminalAsyncDone  TerminalMessageType = "async_done"
	TerminalCompletion TerminalMessageType = "completion"
	TerminalError      TerminalMessageType = "error"
)

// TerminalMessage is one JSON frame of the terminal protocol.
type TerminalMessage struct {
	Type TerminalMessageType `json:"type"`
	Text string              `json:"text,omitempty"`
	Next bool                `json:"next,omitempty"`

	// Output frames.
	Action string `json:"action,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Color  string `json:"color,omitempty"`

	// Edit frames, in both directions.
	EditID       string `json:"edit_id,omitempty"`
	EditContents string `json:"edit_contents,omitempty"`

	Completion *CompleteResponse `json:"completion,omitempty"`
}
