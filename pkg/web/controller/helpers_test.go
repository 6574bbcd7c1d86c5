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
	"bytes"
	"math/rand"
	"net/http/httptest"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/store"
)

func newTestContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx.Request = req
	return ctx, w
}

// testShell is a dispatcher with an in-memory store and a mock clock.
type testShell struct {
	d      *shell.Dispatcher
	engine *autocomplete.Engine
	sess   *session.Session
	store  *store.Memory
	mock   *clock.Mock
}

func newTestShell() *testShell {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC))

	sess := session.New(20, rand.New(rand.NewSource(7)))
	st := store.NewMemory()
	runner := network.NewRunner(mock, rand.New(rand.NewSource(8)))
	d := shell.New(sess, st, runner, mock)
	return &testShell{
		d:      d,
		engine: autocomplete.New(sess),
		sess:   sess,
		store:  st,
		mock:   mock,
	}
}
