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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommandRequestValidate(t *testing.T) {
	req := RunCommandRequest{Command: "ls"}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected command validation success: %v", err)
	}

	req.Command = ""
	if err := req.Validate(); err == nil {
		t.Fatalf("expected validation error when command is empty")
	}
}

func TestCompleteRequestValidate(t *testing.T) {
	req := CompleteRequest{Input: "cd do"}
	assert.NoError(t, req.Validate())

	req.Input = ""
	assert.Error(t, req.Validate())
}

func TestEditRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     EditRequest
		wantErr bool
	}{
		{name: "uuid", req: EditRequest{ID: "0b6f5e65-2a44-4a4b-9d86-8a8f6e0c9e11", Contents: "x"}},
		{name: "empty contents allowed", req: EditRequest{ID: "0b6f5e65-2a44-4a4b-9d86-8a8f6e0c9e11"}},
		{name: "missing id", req: EditRequest{Contents: "x"}, wantErr: true},
		{name: "not a uuid", req: EditRequest{ID: "readme"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerStreamEventToJSON(t *testing.T) {
	event := ServerStreamEvent{
		Type:          StreamEventTypeStdout,
		Text:          "reply from fe80::1: seq=1 time=1.00ms",
		ExecutionTime: 3,
	}

	var decoded ServerStreamEvent
	require.NoError(t, json.Unmarshal(event.ToJSON(), &decoded))
	assert.Equal(t, event, decoded)
}

func TestTerminalMessageOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(TerminalMessage{Type: TerminalInterrupt})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"interrupt"}`, string(data))
}
