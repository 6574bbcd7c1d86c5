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
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Color          string          `json:"color" yaml:"color"`
	CommandHistory []string        `json:"commandHistory" yaml:"commandHistory"`
	FileSystem     *vfs.FileSystem `json:"fileSystem" yaml:"fileSystem"`
}

// Session is the single logical owner of the shell state. Callers hold the
// embedded mutex around every read or mutation.
type Session struct {
	sync.Mutex

	Color   string
	History *History
	FS      *vfs.FileSystem

	rng *rand.Rand
}

// New returns a session in its default state. A nil rng is seeded from the clock.
func New(historySize int, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{
		History: NewHistory(historySize),
		rng:     rng,
	}
	s.reset()
	return s
}

// Reset discards everything and starts over from the default layout.
func (s *Session) Reset() {
	s.reset()
}

func (s *Session) reset() {
	s.Color = DefaultColor
	s.History.Replace(nil)
	s.FS = DefaultFileSystem(s.rng)
}

// Capture returns a deep copy of the session state.
func (s *Session) Capture() *Snapshot {
	return &Snapshot{
		Color:          s.Color,
		CommandHistory: s.History.Entries(),
		FileSystem:     CloneFileSystem(s.FS),
	}
}

// Restore replaces the session state with snap. Invalid snapshots are rejected
// and leave the session untouched.
func (s *Session) Restore(snap *Snapshot) error {
	if snap == nil || snap.FileSystem == nil {
		return fmt.Errorf("restore session: snapshot has no filesystem")
	}
	fs := CloneFileSystem(snap.FileSystem)
	if err := fs.Validate(); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if snap.Color != "" {
		s.Color = snap.Color
	} else {
		s.Color = DefaultColor
	}
	s.History.Replace(snap.CommandHistory)
	s.FS = fs
	RefreshListings(s.FS)
	return nil
}

// Rand exposes the generator used for simulated values.
func (s *Session) Rand() *rand.Rand {
	return s.rng
}

// CloneFileSystem deep copies fs. Nil entries are kept as nil so Validate can
// report them.
func CloneFileSystem(fs *vfs.FileSystem) *vfs.FileSystem {
	if fs == nil {
		return nil
	}
	out := &vfs.FileSystem{CurrentDirectoryID: fs.CurrentDirectoryID}
	for _, dir := range fs.Directories {
		out.Directories = append(out.Directories, cloneEntity(dir))
	}
	return out
}

func cloneEntity(e *vfs.Entity) *vfs.Entity {
	if e == nil {
		return nil
	}
	c := *e
	c.Permissions = append([]vfs.Permission(nil), e.Permissions...)
	c.Entities = nil
	for _, child := range e.Entities {
		c.Entities = append(c.Entities, cloneEntity(child))
	}
	return &c
}
