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

// Package repl runs the shell in the local terminal.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/render"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
)

const (
	banner         = "vshell. type \"help\" to get started, Ctrl+C stops a running ping."
	editPrompt     = "| "
	editTerminator = "."
	clearSequence  = "\033[H\033[2J"
)

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// REPL reads command lines and prints the replies in the session color.
type REPL struct {
	shell  *shell.Dispatcher
	engine *autocomplete.Engine

	outMu sync.Mutex
	out   io.Writer
	// color is cached because ping output is printed with the runner locked.
	color string
}

func New(d *shell.Dispatcher, engine *autocomplete.Engine) *REPL {
	return &REPL{shell: d, engine: engine}
}

// Run opens the terminal and serves it until exit or EOF. The session is saved
// before returning.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.shell.Prompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Listener:        newTabCompleter(r.engine),
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	for _, entry := range r.shell.Snapshot().CommandHistory {
		_ = rl.SaveHistory(entry)
	}
	r.setOutput(rl.Stdout())

	return r.loop(ctx, rl)
}

func (r *REPL) loop(ctx context.Context, in lineReader) error {
	defer func() {
		if err := r.shell.Save(ctx); err != nil {
			log.Error("failed to save session on exit: %v", err)
		}
	}()

	r.refreshColor()
	r.println(banner)
	for {
		in.SetPrompt(r.colored(r.shell.Prompt()))
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if r.shell.Interrupt() {
				log.Debug("ping interrupted from the terminal")
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		resp := r.shell.Execute(ctx, line, shell.ObserverFuncs{Output: r.println})
		r.refreshColor()
		switch resp.Action {
		case shell.ActionExit:
			r.println(resp.Text)
			return nil
		case shell.ActionClear:
			r.write(clearSequence)
		case shell.ActionEdit:
			r.println(resp.Text)
			if err := r.edit(in, resp); err != nil {
				return err
			}
		default:
			if resp.Text != "" {
				r.println(resp.Text)
			}
		}
	}
}

// edit collects lines until the terminator and commits them. Ctrl+C drops
// the buffer.
func (r *REPL) edit(in lineReader, resp shell.Response) error {
	if resp.EditContents != "" {
		r.println(resp.EditContents)
	}
	in.SetPrompt(r.colored(editPrompt))

	var lines []string
	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			r.println("edit cancelled")
			return nil
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if line == editTerminator {
			break
		}
		lines = append(lines, line)
	}

	r.println(r.shell.CommitEdit(resp.EditID, strings.Join(lines, "\n")).Text)
	return nil
}

func (r *REPL) setOutput(w io.Writer) {
	r.outMu.Lock()
	r.out = w
	r.outMu.Unlock()
}

func (r *REPL) refreshColor() {
	color := r.shell.Color()
	r.outMu.Lock()
	r.color = color
	r.outMu.Unlock()
}

func (r *REPL) colored(text string) string {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	return render.Colorize(r.color, text)
}

// println is also the ping observer and must not touch the session.
func (r *REPL) println(text string) {
	r.write(r.colored(text) + "\n")
}

func (r *REPL) write(text string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if r.out == nil {
		return
	}
	if _, err := io.WriteString(r.out, text); err != nil {
		log.Warn("terminal write failed: %v", err)
	}
}

// tabCompleter replaces the line with the engine completion on Tab. Tab on a
// line it produced moves on to the next match.
type tabCompleter struct {
	engine *autocomplete.Engine
}

func newTabCompleter(engine *autocomplete.Engine) *tabCompleter {
	return &tabCompleter{engine: engine}
}

func (t *tabCompleter) OnChange(line []rune, _ int, key rune) ([]rune, int, bool) {
	if key != readline.CharTab {
		return nil, 0, false
	}
	prompt := t.engine.Prompt()
	result := t.engine.Complete(prompt+strings.TrimRight(string(line), "\t"), true)
	if !result.Valid {
		return nil, 0, false
	}
	completed := []rune(strings.TrimPrefix(result.Line, prompt))
	return completed, len(completed), true
}
