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

// Package store persists session snapshots.
package store

import (
	"context"
	"errors"

	"github.com/alibaba/opensandbox/vshell/pkg/session"
)

// ErrSnapshotNotFound is returned by Load when nothing has been saved yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store saves and loads the single snapshot of a shell.
type Store interface {
	Save(ctx context.Context, snap *session.Snapshot) error
	Load(ctx context.Context) (*session.Snapshot, error)
	Delete(ctx context.Context) error
}

// Memory keeps the snapshot in process. It backs tests and runs without a
// configured location.
type Memory struct {
	data []byte
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, snap *session.Snapshot) error {
	data, err := encode(FormatJSON, snap)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *Memory) Load(_ context.Context) (*session.Snapshot, error) {
	if m.data == nil {
		return nil, ErrSnapshotNotFound
	}
	return decode(FormatJSON, m.data)
}

func (m *Memory) Delete(context.Context) error {
	m.data = nil
	return nil
}
