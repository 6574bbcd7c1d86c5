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

package shell

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/store"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

var fixedNow = time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC)

type fixture struct {
	t     *testing.T
	d     *Dispatcher
	sess  *session.Session
	mock  *clock.Mock
	store store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, store.NewMemory())
}

func newFixtureWithStore(t *testing.T, st store.Store) *fixture {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(fixedNow)

	sess := session.New(20, rand.New(rand.NewSource(11)))
	runner := network.NewRunner(mock, rand.New(rand.NewSource(12)))
	f := &fixture{
		t:     t,
		d:     New(sess, st, runner, mock),
		sess:  sess,
		mock:  mock,
		store: st,
	}
	t.Cleanup(func() { f.d.Interrupt() })
	return f
}

func (f *fixture) run(input string) Response {
	f.t.Helper()
	return f.d.Execute(context.Background(), input, nil)
}

func (f *fixture) say(input string) string {
	f.t.Helper()
	return f.run(input).Text
}

func (f *fixture) lookup(path string, kind vfs.Kind) *vfs.Entity {
	f.t.Helper()
	return f.sess.FS.Resolve(path, kind)
}

type lineCollector struct {
	lines chan string
	done  chan struct{}
}

func newLineCollector() *lineCollector {
	return &lineCollector{lines: make(chan string, 16), done: make(chan struct{})}
}

func (c *lineCollector) OnAsyncOutput(line string) { c.lines <- line }
func (c *lineCollector) OnAsyncComplete()          { close(c.done) }

func (c *lineCollector) next(t *testing.T) string {
	t.Helper()
	select {
	case line := <-c.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for ping output")
		return ""
	}
}
