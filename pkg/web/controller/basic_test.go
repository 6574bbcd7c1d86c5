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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alibaba/opensandbox/vshell/pkg/web/model"
)

func setupBasicController(method string, body []byte) (*basicController, *httptest.ResponseRecorder) {
	ctx, w := newTestContext(method, "/", body)
	ctrl := &basicController{ctx: ctx}
	return ctrl, w
}

func TestRespondErrorAddsCodeAndMessage(t *testing.T) {
	ctrl, w := setupBasicController(http.MethodGet, nil)

	ctrl.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, "invalid payload")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	var got model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal error body: %v", err)
	}
	if got.Code != model.ErrorCodeInvalidRequest {
		t.Fatalf("unexpected code: %s", got.Code)
	}
	if got.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", got.Message)
	}
}

func TestRespondSuccessWithoutBody(t *testing.T) {
	ctrl, w := setupBasicController(http.MethodPost, nil)

	ctrl.RespondSuccess(nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}
}

func TestRespondSuccessRendersCommandResponse(t *testing.T) {
	ts := newTestShell()
	ctx, w := newTestContext(http.MethodPost, "/command", nil)
	ctrl := NewShellController(ctx, ts.d, ts.engine)

	ctrl.RespondSuccess(ctrl.commandResponse(ts.d.Execute(context.Background(), "date", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var got model.CommandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if got.Command != "Date" || got.Text != "2024-05-06" || got.Action != "none" {
		t.Fatalf("unexpected response: %#v", got)
	}
	if got.Prompt == "" || !strings.HasPrefix(got.Color, "#") {
		t.Fatalf("expected prompt and color, got %#v", got)
	}
	if strings.Contains(w.Body.String(), "edit_id") {
		t.Fatalf("edit fields should be omitted: %s", w.Body.String())
	}
}

func TestRespondErrorReportsInvalidSnapshot(t *testing.T) {
	ts := newTestShell()
	rootID := ts.sess.FS.Root().ID

	snap := ts.d.Snapshot()
	root := snap.FileSystem.Root()
	root.Entities = append(root.Entities, nil)
	if err := ts.store.Save(context.Background(), snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	ctx, w := newTestContext(http.MethodPost, "/session/load", nil)
	NewShellController(ctx, ts.d, ts.engine).LoadSession()

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	var got model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal error body: %v", err)
	}
	if got.Code != model.ErrorCodeRuntimeError {
		t.Fatalf("unexpected code: %s", got.Code)
	}
	if !strings.HasPrefix(got.Message, "error loading session.") || !strings.Contains(got.Message, "null child") {
		t.Fatalf("unexpected message: %s", got.Message)
	}
	if ts.sess.FS.Root().ID != rootID {
		t.Fatalf("session root changed after a rejected load")
	}
}

func TestBindJSONDecodesRunCommandRequest(t *testing.T) {
	ctrl, _ := setupBasicController(http.MethodPost, []byte(`{"command":"cd home"}`))

	var req model.RunCommandRequest
	if err := ctrl.bindJSON(&req); err != nil {
		t.Fatalf("bindJSON: %v", err)
	}
	if req.Command != "cd home" {
		t.Fatalf("unexpected command: %q", req.Command)
	}

	ctrl, _ = setupBasicController(http.MethodPost, []byte("{not json"))
	if err := ctrl.bindJSON(&req); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestPingHandler(t *testing.T) {
	ctx, w := newTestContext(http.MethodGet, "/ping", nil)
	PingHandler(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "pong" {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
}

func TestQueryInt64(t *testing.T) {
	ctrl := &basicController{}

	tests := []struct {
		name     string
		query    string
		def      int64
		expected int64
	}{
		{name: "watch interval", query: "250", def: 0, expected: 250},
		{name: "empty uses default", query: "", def: 5, expected: 5},
		{name: "invalid uses default", query: "not-a-number", def: -1, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ctrl.QueryInt64(tt.query, tt.def)
			if got != tt.expected {
				t.Fatalf("QueryInt64(%q, %d) = %d, want %d", tt.query, tt.def, got, tt.expected)
			}
		})
	}
}
