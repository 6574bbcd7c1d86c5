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
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/vshell/pkg/web/model"
)

func dialTerminal(t *testing.T, ts *testShell) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/terminal", func(ctx *gin.Context) {
		NewTerminalController(ctx, ts.d, ts.engine).Serve()
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/terminal"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) model.TerminalMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg model.TerminalMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestTerminalGreetsWithPrompt(t *testing.T) {
	conn := dialTerminal(t, newTestShell())

	greeting := readFrame(t, conn)
	assert.Equal(t, model.TerminalOutput, greeting.Type)
	assert.Equal(t, "/> ", greeting.Prompt)
	assert.Equal(t, "#33ff66", greeting.Color)
}

func TestTerminalRunsCommands(t *testing.T) {
	conn := dialTerminal(t, newTestShell())
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalInput, Text: "cd ~"}))
	out := readFrame(t, conn)
	assert.Equal(t, "~> ", out.Prompt)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalComplete, Text: "cd do"}))
	completion := readFrame(t, conn)
	require.Equal(t, model.TerminalCompletion, completion.Type)
	require.NotNil(t, completion.Completion)
	assert.True(t, completion.Completion.Valid)
	assert.True(t, strings.HasPrefix(completion.Completion.Line, "~> cd do"), completion.Completion.Line)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: "bogus"}))
	assert.Equal(t, model.TerminalError, readFrame(t, conn).Type)
}

func TestTerminalEditRoundTrip(t *testing.T) {
	conn := dialTerminal(t, newTestShell())
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalInput, Text: "edit ~/documents/readme.txt"}))
	edit := readFrame(t, conn)
	require.Equal(t, "edit", edit.Action)
	require.NotEmpty(t, edit.EditID)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalEdit, EditID: edit.EditID, EditContents: "hello"}))
	assert.Equal(t, `saved "readme.txt"`, readFrame(t, conn).Text)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalInput, Text: "vw ~/documents/readme.txt"}))
	assert.Equal(t, "hello", readFrame(t, conn).Text)
}

func TestTerminalPingInterrupt(t *testing.T) {
	ts := newTestShell()
	conn := dialTerminal(t, ts)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalInput, Text: "ping ::1"}))
	header := readFrame(t, conn)
	assert.Equal(t, "ping", header.Action)
	assert.Equal(t, "PING ::1: 5 probes", header.Text)

	ts.mock.Add(time.Second)
	probe := readFrame(t, conn)
	assert.Equal(t, model.TerminalAsync, probe.Type)
	assert.Contains(t, probe.Text, "seq=1")

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalInterrupt}))
	summary := readFrame(t, conn)
	assert.Equal(t, model.TerminalAsync, summary.Type)
	assert.Contains(t, summary.Text, "1 packets transmitted")
	assert.Equal(t, model.TerminalAsyncDone, readFrame(t, conn).Type)
	assert.False(t, ts.d.Pinging())
}

func TestTerminalDisconnectStopsPing(t *testing.T) {
	ts := newTestShell()
	conn := dialTerminal(t, ts)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(model.TerminalMessage{Type: model.TerminalInput, Text: "ping ::1"}))
	readFrame(t, conn)
	require.True(t, ts.d.Pinging())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !ts.d.Pinging() }, 2*time.Second, 10*time.Millisecond)
}
