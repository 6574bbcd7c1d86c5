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

package repl

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/store"
)

type step struct {
	line string
	err  error
}

// scriptedReader replays steps and then reports EOF.
type scriptedReader struct {
	steps   []step
	prompts []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.steps) == 0 {
		return "", io.EOF
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	return next.line, next.err
}

func (s *scriptedReader) SetPrompt(prompt string) {
	s.prompts = append(s.prompts, prompt)
}

func lines(input ...string) []step {
	steps := make([]step, 0, len(input))
	for _, l := range input {
		steps = append(steps, step{line: l})
	}
	return steps
}

type harness struct {
	repl  *REPL
	out   *bytes.Buffer
	store *store.Memory
	d     *shell.Dispatcher
}

func newHarness() *harness {
	mock := clock.NewMock()
	sess := session.New(20, rand.New(rand.NewSource(5)))
	st := store.NewMemory()
	d := shell.New(sess, st, network.NewRunner(mock, rand.New(rand.NewSource(6))), mock)
	r := New(d, autocomplete.New(sess))
	out := &bytes.Buffer{}
	r.setOutput(out)
	return &harness{repl: r, out: out, store: st, d: d}
}

func (h *harness) run(t *testing.T, steps ...step) *scriptedReader {
	t.Helper()
	in := &scriptedReader{steps: steps}
	require.NoError(t, h.repl.loop(context.Background(), in))
	return in
}

func TestLoopPrintsRepliesAndPrompts(t *testing.T) {
	h := newHarness()

	in := h.run(t, lines("cd ~", "pwd", "", "bogus")...)

	out := h.out.String()
	assert.Contains(t, out, banner)
	assert.Contains(t, out, "~\n")
	assert.Contains(t, out, `"bogus" is an unknown command`)
	require.NotEmpty(t, in.prompts)
	assert.Contains(t, in.prompts[0], "/> ")
	assert.Contains(t, in.prompts[len(in.prompts)-1], "~> ")
}

func TestLoopExitSavesSession(t *testing.T) {
	h := newHarness()

	in := h.run(t, lines("cd ~", "exit", "pwd")...)

	assert.Contains(t, h.out.String(), "goodbye")
	assert.Len(t, in.steps, 1, "lines after exit are not read")

	snap, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cd ~", "exit"}, snap.CommandHistory)
}

func TestLoopClearScreen(t *testing.T) {
	h := newHarness()
	h.run(t, lines("cls")...)
	assert.Contains(t, h.out.String(), clearSequence)
}

func TestLoopEditMode(t *testing.T) {
	h := newHarness()

	in := h.run(t, lines("cd ~/documents", "edit readme.txt", "first", "second", ".", "vw readme.txt")...)

	out := h.out.String()
	assert.Contains(t, out, "welcome to vshell")
	assert.Contains(t, out, `saved "readme.txt"`)
	assert.Contains(t, out, "first\nsecond\n")
	assert.Contains(t, in.prompts, editPrompt)
}

func TestLoopEditCancelled(t *testing.T) {
	h := newHarness()

	h.run(t,
		step{line: "cd ~/documents"},
		step{line: "edit readme.txt"},
		step{line: "scratch"},
		step{err: readline.ErrInterrupt},
		step{line: "vw readme.txt"},
	)

	out := h.out.String()
	assert.Contains(t, out, "edit cancelled")
	assert.NotContains(t, out, "saved")
}

func TestLoopInterruptStopsPing(t *testing.T) {
	h := newHarness()

	h.run(t,
		step{line: "ping ::1"},
		step{err: readline.ErrInterrupt},
	)

	out := h.out.String()
	assert.Contains(t, out, "PING ::1: 5 probes")
	assert.Contains(t, out, "0 packets transmitted")
	assert.False(t, h.d.Pinging())
}

func TestTabCompleterCycles(t *testing.T) {
	h := newHarness()
	tab := newTabCompleter(h.repl.engine)

	_, _, ok := tab.OnChange([]rune("ls /sys"), 7, 'a')
	assert.False(t, ok, "only tab completes")

	line, pos, ok := tab.OnChange([]rune("ls /sys"), 7, readline.CharTab)
	require.True(t, ok)
	assert.Equal(t, "ls /system/", string(line))
	assert.Equal(t, len(line), pos)

	first, _, ok := tab.OnChange([]rune("cd /"), 4, readline.CharTab)
	require.True(t, ok)
	second, _, ok := tab.OnChange(first, len(first), readline.CharTab)
	require.True(t, ok)
	assert.NotEqual(t, string(first), string(second))

	_, _, ok = tab.OnChange([]rune("mf rep"), 6, readline.CharTab)
	assert.False(t, ok)
}
