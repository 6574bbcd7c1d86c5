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

package session

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/alibaba/opensandbox/vshell/pkg/command"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/payload"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

func newTestSession() *Session {
	return New(5, rand.New(rand.NewSource(42)))
}

func TestDefaultFileSystem(t *testing.T) {
	fs := DefaultFileSystem(rand.New(rand.NewSource(1)))
	require.NoError(t, fs.Validate())

	roots := 0
	vfs.Walk(fs.Root(), func(e *vfs.Entity) bool {
		if e.IsRoot {
			roots++
		}
		return true
	})
	assert.Equal(t, 1, roots)

	for _, p := range []string{vfs.ProgramsPath, vfs.DevicesPath, vfs.NetworkPath, vfs.GroupsPath, vfs.UsersPath, vfs.TempPath, "/users/user/home/mail"} {
		assert.NotNil(t, fs.FindDirectory(p), p)
	}

	home := fs.Home()
	assert.Equal(t, "/users/user/home", fs.EntityPath(home))
	assert.Equal(t, "100111", vfs.DisplayPermissions(fs.Root().Permissions))
	assert.Equal(t, "111111", vfs.DisplayPermissions(fs.FindDirectory(vfs.TempPath).Permissions))

	programs := fs.FindDirectory(vfs.ProgramsPath)
	assert.Len(t, programs.Entities, len(command.All()))
	ls := vfs.FindChild(programs, "ls", vfs.KindFile)
	require.NotNil(t, ls)
	topic, ok := command.ParseProgram(ls.Contents)
	require.True(t, ok)
	assert.Equal(t, command.TopicFor(command.ListDirectory), topic)

	adapters := network.Devices(fs.FindDirectory(vfs.NetworkPath))
	require.Len(t, adapters, 3)
	assert.Equal(t, "lo", adapters[2].Name)
	assert.True(t, strings.HasPrefix(adapters[2].IPv8, "loop"))
	assert.True(t, network.IsIPv6(adapters[0].IPv6))

	admin := vfs.FindChild(fs.FindDirectory(vfs.GroupsPath), "admin", vfs.KindFile)
	require.NotNil(t, admin)
	assert.Equal(t, []string{DefaultUser}, GroupMembers(admin.Contents))
}

func TestRefreshListings(t *testing.T) {
	fs := DefaultFileSystem(rand.New(rand.NewSource(1)))
	programs := fs.FindDirectory(vfs.ProgramsPath)

	commands := vfs.FindChild(programs, "commands", vfs.KindFile)
	listed, ok := payload.ParseBrackets(commands.Contents).Get("COMMANDS")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(listed, "help, commands, color"), listed)

	commands.Contents = payload.ReplaceBracket(commands.Contents, "COMMANDS", "stale")
	RefreshListings(fs)
	listed, _ = payload.ParseBrackets(commands.Contents).Get("COMMANDS")
	assert.NotEqual(t, "stale", listed)

	colors := vfs.FindChild(programs, "colors", vfs.KindFile)
	listed, ok = payload.ParseBrackets(colors.Contents).Get("COLORS")
	require.True(t, ok)
	assert.Contains(t, listed, DefaultColor)
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(fmt.Sprintf("cmd%d", i))
	}
	h.Add("")
	assert.Equal(t, []string{"cmd2", "cmd3", "cmd4"}, h.Entries())
	assert.Equal(t, 3, h.Limit())

	h.Replace([]string{"a", "b", "c", "d"})
	assert.Equal(t, []string{"b", "c", "d"}, h.Entries())

	assert.Equal(t, DefaultHistorySize, NewHistory(0).Limit())
}

func TestSnapshotRoundTripJSON(t *testing.T) {
	s := newTestSession()
	s.Color = "#112233"
	s.History.Add("ls")
	s.History.Add("cd ~")
	s.FS.SetCurrentDirectory(s.FS.Home())

	snap := s.Capture()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(snap, &decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("snapshot changed across json (-want +got):\n%s", diff)
	}

	other := New(5, rand.New(rand.NewSource(7)))
	require.NoError(t, other.Restore(&decoded))
	assert.Equal(t, "#112233", other.Color)
	assert.Equal(t, []string{"ls", "cd ~"}, other.History.Entries())
	assert.Equal(t, s.FS.Home().ID, other.FS.CurrentDirectory().ID)
	assert.Equal(t, s.FS.Count(), other.FS.Count())
}

func TestSnapshotRoundTripYAML(t *testing.T) {
	snap := newTestSession().Capture()

	raw, err := yaml.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(snap, &decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("snapshot changed across yaml (-want +got):\n%s", diff)
	}
}

func TestCaptureIsDeepCopy(t *testing.T) {
	s := newTestSession()
	snap := s.Capture()

	s.FS.Root().Entities[0].Name = "changed"
	s.History.Add("later")

	assert.Equal(t, "system", snap.FileSystem.Root().Entities[0].Name)
	assert.Empty(t, snap.CommandHistory)
}

func TestRestoreRejectsInvalidSnapshot(t *testing.T) {
	s := newTestSession()
	before := s.FS.Root().ID

	assert.Error(t, s.Restore(nil))
	assert.Error(t, s.Restore(&Snapshot{Color: "red"}))

	broken := s.Capture()
	broken.FileSystem.Root().Entities[0].ParentID = "elsewhere"
	assert.Error(t, s.Restore(broken))

	assert.Equal(t, before, s.FS.Root().ID)
	assert.Equal(t, DefaultColor, s.Color)
}

func TestRestoreRejectsNullEntity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "null child",
			raw:  `{"fileSystem":{"directories":[{"id":"r","isRoot":true,"isDirectory":true,"entities":[null]}],"currentDirectoryId":"r"}}`,
			want: "null child",
		},
		{
			name: "null directory",
			raw:  `{"fileSystem":{"directories":[null],"currentDirectoryId":"r"}}`,
			want: "directory entry 0 is null",
		},
		{
			name: "null next to root",
			raw:  `{"fileSystem":{"directories":[null,{"id":"r","isRoot":true,"isDirectory":true}],"currentDirectoryId":"r"}}`,
			want: "directory entry 0 is null",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			before := s.FS.Root().ID

			var snap Snapshot
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &snap))

			var err error
			require.NotPanics(t, func() { err = s.Restore(&snap) })
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, before, s.FS.Root().ID)
		})
	}
}

func TestReset(t *testing.T) {
	s := newTestSession()
	s.Color = "red"
	s.History.Add("ls")
	oldRoot := s.FS.Root().ID

	s.Reset()
	assert.Equal(t, DefaultColor, s.Color)
	assert.Zero(t, s.History.Len())
	assert.NotEqual(t, oldRoot, s.FS.Root().ID)
}
