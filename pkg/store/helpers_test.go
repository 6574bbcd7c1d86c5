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
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubDriver is a tiny in-memory stand-in for the snapshot table.
type stubDriver struct {
	mu          sync.Mutex
	rows        map[string]string
	pingErr     error
	pingFails   int32
	execErr     error
	pingCalled  int32
	execCalled  int32
	queryCalled int32
}

func newStubDriver() *stubDriver {
	return &stubDriver{rows: make(map[string]string)}
}

type stubConn struct {
	d *stubDriver
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("not implemented") }

func (c *stubConn) Ping(context.Context) error {
	n := atomic.AddInt32(&c.d.pingCalled, 1)
	if n <= atomic.LoadInt32(&c.d.pingFails) {
		return c.d.pingErr
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	atomic.AddInt32(&c.d.execCalled, 1)
	if c.d.execErr != nil {
		return nil, c.d.execErr
	}

	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	switch {
	case strings.HasPrefix(query, "INSERT"):
		c.d.rows[args[0].Value.(string)] = args[1].Value.(string)
	case strings.HasPrefix(query, "DELETE"):
		delete(c.d.rows, args[0].Value.(string))
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, _ string, args []driver.NamedValue) (driver.Rows, error) {
	atomic.AddInt32(&c.d.queryCalled, 1)

	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	rows := &stubRows{columns: []string{"payload"}}
	if v, ok := c.d.rows[args[0].Value.(string)]; ok {
		rows.rows = [][]driver.Value{{v}}
	}
	return rows, nil
}

type stubRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	r.idx++
	for i, v := range row {
		dest[i] = v
	}
	return nil
}

type stubConnector struct {
	d *stubDriver
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{d: c.d}, nil
}

func (c *stubConnector) Driver() driver.Driver {
	return c
}

func (c *stubConnector) Open(string) (driver.Conn, error) {
	return &stubConn{d: c.d}, nil
}

func newStubDB(t *testing.T, d *stubDriver) *sql.DB {
	t.Helper()
	driverName := fmt.Sprintf("stub-%d", time.Now().UnixNano())
	sql.Register(driverName, &stubConnector{d: d})
	db, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
