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

// Package shell routes command lines to their handlers.
package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/command"
	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/metrics"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/store"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

// Action tells the host what to do beyond printing the reply.
type Action string

const (
	ActionNone  Action = "none"
	ActionExit  Action = "exit"
	ActionClear Action = "clear"
	ActionEdit  Action = "edit"
	ActionPing  Action = "ping"
)

// Response is the outcome of one command line.
type Response struct {
	Command command.Command
	Text    string
	Action  Action

	// EditID and EditContents are set for ActionEdit.
	EditID       string
	EditContents string
}

// Observer receives the asynchronous output of a ping.
type Observer interface {
	OnAsyncOutput(line string)
	OnAsyncComplete()
}

// ObserverFuncs adapts plain functions to Observer.
type ObserverFuncs struct {
	Output   func(line string)
	Complete func()
}

func (o ObserverFuncs) OnAsyncOutput(line string) {
	if o.Output != nil {
		o.Output(line)
	}
}

func (o ObserverFuncs) OnAsyncComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Dispatcher executes command lines against one session.
type Dispatcher struct {
	sess   *session.Session
	store  store.Store
	pinger *network.Runner
	clk    clock.Clock
}

// New wires a dispatcher. clk serves the date and time commands.
func New(sess *session.Session, st store.Store, pinger *network.Runner, clk clock.Clock) *Dispatcher {
	return &Dispatcher{
		sess:   sess,
		store:  st,
		pinger: pinger,
		clk:    clk,
	}
}

// Session returns the session the dispatcher owns.
func (d *Dispatcher) Session() *session.Session {
	return d.sess
}

// Execute runs one command line. obs receives ping output and may be nil for
// hosts that never ping.
func (d *Dispatcher) Execute(ctx context.Context, input string, obs Observer) Response {
	if obs == nil {
		obs = ObserverFuncs{}
	}
	startAt := d.clk.Now()

	d.sess.Lock()
	defer d.sess.Unlock()

	tokens := command.Tokenize(input)
	if len(tokens) == 0 || input == "" {
		return Response{Command: command.Unknown, Action: ActionNone}
	}
	d.sess.History.Add(input)

	cmd := command.Classify(tokens[0])
	args := compact(tokens[1:])
	c := &call{
		ctx:   ctx,
		cmd:   cmd,
		token: tokens[0],
		args:  args,
		fs:    d.sess.FS,
		obs:   obs,
	}

	var resp Response
	if cmd.RequiresArgument() && len(args) == 0 {
		resp = text(d.helpFor(c.fs, tokens[0]))
	} else {
		resp = d.route(c)
	}
	if resp.Action == "" {
		resp.Action = ActionNone
	}
	resp.Command = cmd

	metrics.RecordCommand(string(cmd), d.clk.Since(startAt))
	metrics.SetEntities(d.sess.FS.Count())
	return resp
}

// call carries the parsed input of one command.
type call struct {
	ctx   context.Context
	cmd   command.Command
	token string
	args  []string
	fs    *vfs.FileSystem
	obs   Observer
}

func (c *call) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

func (d *Dispatcher) route(c *call) Response {
	switch c.cmd {
	case command.Help:
		topic := c.arg(0)
		if topic == "" {
			topic = command.Help.Name()
		}
		return text(d.helpFor(c.fs, topic))
	case command.Commands:
		return text(d.commands(c))
	case command.Color:
		return text(d.color(c))
	case command.Colors:
		return text(d.colors(c))
	case command.Exit:
		return Response{Text: "goodbye", Action: ActionExit}
	case command.ClearScreen:
		return Response{Action: ActionClear}
	case command.ListDirectory:
		return text(d.listDirectory(c))
	case command.ChangeDirectory:
		return text(d.changeDirectory(c))
	case command.PrintDirectory:
		return text(c.fs.DisplayPath(c.fs.CurrentDirectory()))
	case command.ListHardware:
		return text(d.listHardware(c))
	case command.Date:
		return text(d.clk.Now().Format("2006-01-02"))
	case command.Time:
		return text(d.clk.Now().Format("15:04:05"))
	case command.DateTime:
		return text(d.clk.Now().Format("2006-01-02 15:04:05"))
	case command.Network:
		return text(d.network(c))
	case command.Ping:
		return d.ping(c)
	case command.MakeUser:
		return text(d.makeUser(c))
	case command.DeleteUser:
		return text(d.deleteUser(c))
	case command.MakeGroup:
		return text(d.makeGroup(c))
	case command.DeleteGroup:
		return text(d.deleteGroup(c))
	case command.AddUserToGroup:
		return text(d.addUserToGroup(c))
	case command.DeleteUserFromGroup:
		return text(d.deleteUserFromGroup(c))
	case command.ViewGroup:
		return text(d.viewGroup(c))
	case command.Save:
		return text(d.save(c))
	case command.DeleteSave:
		return text(d.deleteSave(c))
	case command.History:
		return text(d.history())
	case command.Find:
		return text(d.find(c))
	case command.MakeFile:
		return text(d.makeEntity(c, false))
	case command.MakeDirectory:
		return text(d.makeEntity(c, true))
	case command.DeleteFile:
		return text(d.deleteFile(c))
	case command.DeleteDirectory:
		return text(d.deleteDirectory(c))
	case command.MoveFile:
		return text(d.move(c, vfs.KindFile))
	case command.MoveDirectory:
		return text(d.move(c, vfs.KindDirectory))
	case command.EditFile:
		return d.editFile(c)
	case command.ViewFile:
		return text(d.viewFile(c))
	case command.ViewPermissions:
		return text(d.viewPermissions(c))
	case command.ChangePermissions:
		return text(d.changePermissions(c))
	default:
		return text(fmt.Sprintf("%q is an unknown command. Use \"commands\" to get a list of available commands.", c.token))
	}
}

// Interrupt stops a running ping. It reports false when nothing was running.
func (d *Dispatcher) Interrupt() bool {
	return d.pinger.Interrupt()
}

// Pinging reports whether a ping is streaming.
func (d *Dispatcher) Pinging() bool {
	return d.pinger.Active()
}

// CommitEdit stores contents into the file with id.
func (d *Dispatcher) CommitEdit(id, contents string) Response {
	d.sess.Lock()
	defer d.sess.Unlock()

	fs := d.sess.FS
	f := vfs.FindByID(fs.Root(), id)
	if f == nil || f.IsDirectory {
		return Response{Command: command.EditFile, Action: ActionNone, Text: fmt.Sprintf("no file with id %q", id)}
	}
	if !f.Can(vfs.UserWrite) {
		return Response{Command: command.EditFile, Action: ActionNone, Text: notWritable(fs, f)}
	}
	f.Contents = contents
	return Response{Command: command.EditFile, Action: ActionNone, Text: fmt.Sprintf("saved %q", f.DisplayName())}
}

// Prompt renders the prompt of the current directory.
func (d *Dispatcher) Prompt() string {
	d.sess.Lock()
	defer d.sess.Unlock()
	return autocomplete.Prompt(d.sess.FS)
}

// Color returns the session terminal color as a hex value.
func (d *Dispatcher) Color() string {
	d.sess.Lock()
	defer d.sess.Unlock()
	return colorHex(d.sess.Color)
}

// Stats summarizes the session for monitoring.
type Stats struct {
	Entities     int
	HistoryLen   int
	HistoryLimit int
	Pinging      bool
	Color        string
}

// Stats takes a consistent snapshot of the counters GET /metrics reports.
func (d *Dispatcher) Stats() Stats {
	d.sess.Lock()
	defer d.sess.Unlock()
	return Stats{
		Entities:     d.sess.FS.Count(),
		HistoryLen:   d.sess.History.Len(),
		HistoryLimit: d.sess.History.Limit(),
		Pinging:      d.pinger.Active(),
		Color:        colorHex(d.sess.Color),
	}
}

// Snapshot captures the session.
func (d *Dispatcher) Snapshot() *session.Snapshot {
	d.sess.Lock()
	defer d.sess.Unlock()
	return d.sess.Capture()
}

// Save persists the session to the store.
func (d *Dispatcher) Save(ctx context.Context) error {
	d.sess.Lock()
	defer d.sess.Unlock()
	return d.saveLocked(ctx)
}

func (d *Dispatcher) saveLocked(ctx context.Context) error {
	if err := d.store.Save(ctx, d.sess.Capture()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load restores the stored session. A missing snapshot is not an error; an
// unreadable one is reported and the current state is kept.
func (d *Dispatcher) Load(ctx context.Context) error {
	d.sess.Lock()
	defer d.sess.Unlock()

	snap, err := d.store.Load(ctx)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		log.Info("no saved session, starting from defaults")
		return nil
	}
	if err != nil {
		log.Warn("failed to load session, keeping current state: %v", err)
		return fmt.Errorf("load session: %w", err)
	}
	if err := d.sess.Restore(snap); err != nil {
		log.Warn("saved session is invalid, keeping current state: %v", err)
		return err
	}
	metrics.SetEntities(d.sess.FS.Count())
	return nil
}

// DeleteSave removes the stored snapshot and resets the session.
func (d *Dispatcher) DeleteSave(ctx context.Context) error {
	d.sess.Lock()
	defer d.sess.Unlock()
	return d.deleteSaveLocked(ctx)
}

func (d *Dispatcher) deleteSaveLocked(ctx context.Context) error {
	if err := d.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete saved session: %w", err)
	}
	d.sess.Reset()
	return nil
}

func text(s string) Response {
	return Response{Text: s}
}

func compact(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
