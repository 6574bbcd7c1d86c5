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

package flag

import "time"

var (
	// ServerPort controls the HTTP listener port.
	ServerPort int

	// ServerLogLevel controls the server log verbosity.
	ServerLogLevel int

	// ServerAccessToken guards API entrypoints when set.
	ServerAccessToken string

	// ApiGracefulShutdownTimeout waits before tearing down SSE streams.
	ApiGracefulShutdownTimeout time.Duration

	// Interactive runs the terminal shell instead of the HTTP server.
	Interactive bool

	// SnapshotPath is the file the session snapshot is persisted to.
	SnapshotPath string

	// SnapshotDSN selects the MySQL snapshot store when set.
	SnapshotDSN string

	// HistorySize caps the persisted command history.
	HistorySize int

	// PingSeed seeds the ping latency generator, 0 means time based.
	PingSeed int64
)
