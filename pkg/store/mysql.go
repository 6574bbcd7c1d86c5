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

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"

	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
)

const (
	defaultSnapshotName = "default"

	createTableSQL = `CREATE TABLE IF NOT EXISTS vshell_snapshots (
	name VARCHAR(64) NOT NULL PRIMARY KEY,
	payload LONGTEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`
	upsertSQL = `INSERT INTO vshell_snapshots (name, payload, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
	selectSQL = `SELECT payload FROM vshell_snapshots WHERE name = ?`
	deleteSQL = `DELETE FROM vshell_snapshots WHERE name = ?`
)

var connectBackoff = wait.Backoff{
	Steps:    5,
	Duration: 200 * time.Millisecond,
	Factor:   2,
	Jitter:   0.1,
}

// MySQLStore keeps the snapshot in a single row of a MySQL table.
type MySQLStore struct {
	name    string
	open    func() (*sql.DB, error)
	backoff wait.Backoff

	dbOnce sync.Once
	db     *sql.DB
	err    error
}

// NewMySQLStore connects lazily with dsn on first use.
func NewMySQLStore(dsn string) *MySQLStore {
	return &MySQLStore{
		name:    defaultSnapshotName,
		open:    func() (*sql.DB, error) { return sql.Open("mysql", dsn) },
		backoff: connectBackoff,
	}
}

// newMySQLStoreWithDB wraps an already opened handle.
func newMySQLStoreWithDB(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		name:    defaultSnapshotName,
		open:    func() (*sql.DB, error) { return db, nil },
		backoff: connectBackoff,
	}
}

// initDB opens the handle, waits for the server and creates the table.
func (s *MySQLStore) initDB(ctx context.Context) error {
	s.dbOnce.Do(func() {
		db, err := s.open()
		if err != nil {
			s.err = err
			return
		}

		err = retry.OnError(s.backoff, func(err error) bool {
			log.Warn("snapshot database not reachable, retrying: %v", err)
			return err != nil
		}, func() error {
			return db.PingContext(ctx)
		})
		if err != nil {
			s.err = fmt.Errorf("ping snapshot database: %w", err)
			return
		}

		if _, err = db.ExecContext(ctx, createTableSQL); err != nil {
			s.err = fmt.Errorf("create snapshot table: %w", err)
			return
		}
		s.db = db
	})

	if s.err != nil {
		return s.err
	}
	if s.db == nil {
		return errors.New("db is not initialized")
	}
	return nil
}

func (s *MySQLStore) Save(ctx context.Context, snap *session.Snapshot) error {
	if err := s.initDB(ctx); err != nil {
		return err
	}
	data, err := encode(FormatJSON, snap)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertSQL, s.name, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *MySQLStore) Load(ctx context.Context) (*session.Snapshot, error) {
	if err := s.initDB(ctx); err != nil {
		return nil, err
	}
	var payload string
	err := s.db.QueryRowContext(ctx, selectSQL, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decode(FormatJSON, []byte(payload))
}

func (s *MySQLStore) Delete(ctx context.Context) error {
	if err := s.initDB(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, deleteSQL, s.name); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *MySQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
