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

import (
	"flag"
	stdlog "log"
	"os"
	"strconv"
	"time"

	"github.com/alibaba/opensandbox/vshell/pkg/log"
)

const (
	snapshotPathEnv            = "VSHELL_SNAPSHOT"
	snapshotDSNEnv             = "VSHELL_MYSQL_DSN"
	historySizeEnv             = "VSHELL_HISTORY_SIZE"
	gracefulShutdownTimeoutEnv = "VSHELL_API_GRACE_SHUTDOWN"
)

// InitFlags registers CLI flags and env overrides.
func InitFlags() {
	InitFlagSet(flag.CommandLine, os.Args[1:])
}

// InitFlagSet applies defaults, env overrides and then the parsed arguments of fs.
func InitFlagSet(fs *flag.FlagSet, args []string) {
	// Set default values
	ServerPort = 44780
	ServerLogLevel = 6
	ServerAccessToken = ""
	ApiGracefulShutdownTimeout = time.Second * 1
	Interactive = false
	SnapshotPath = "./vshell_snapshot.json"
	SnapshotDSN = ""
	HistorySize = 50
	PingSeed = 0

	// First, set default values from environment variables
	if path := os.Getenv(snapshotPathEnv); path != "" {
		SnapshotPath = path
	}

	if dsn := os.Getenv(snapshotDSNEnv); dsn != "" {
		SnapshotDSN = dsn
	}

	if size := os.Getenv(historySizeEnv); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			stdlog.Panicf("Invalid %s: must be a positive integer, got %q", historySizeEnv, size)
		}
		HistorySize = n
	}

	if graceShutdownTimeout := os.Getenv(gracefulShutdownTimeoutEnv); graceShutdownTimeout != "" {
		duration, err := time.ParseDuration(graceShutdownTimeout)
		if err != nil {
			stdlog.Panicf("Failed to parse graceful shutdown timeout from env: %v", err)
		}
		ApiGracefulShutdownTimeout = duration
	}

	// Then define flags with current values as defaults
	fs.IntVar(&ServerPort, "port", ServerPort, "Server listening port (default: 44780)")
	fs.IntVar(&ServerLogLevel, "log-level", ServerLogLevel, "Server log level (0=LevelEmergency, 1=LevelAlert, 2=LevelCritical, 3=LevelError, 4=LevelWarning, 5=LevelNotice, 6=LevelInformational, 7=LevelDebug, default: 6)")
	fs.StringVar(&ServerAccessToken, "access-token", ServerAccessToken, "Server access token for API authentication")
	fs.DurationVar(&ApiGracefulShutdownTimeout, "graceful-shutdown-timeout", ApiGracefulShutdownTimeout, "API graceful shutdown timeout duration (default: 1s)")
	fs.BoolVar(&Interactive, "interactive", Interactive, "Run the shell in this terminal instead of serving HTTP")
	fs.StringVar(&SnapshotPath, "snapshot", SnapshotPath, "Session snapshot file, .yaml/.yml selects YAML encoding")
	fs.StringVar(&SnapshotDSN, "mysql-dsn", SnapshotDSN, "MySQL DSN for the snapshot store, overrides -snapshot")
	fs.IntVar(&HistorySize, "history-size", HistorySize, "Maximum number of commands kept in history (default: 50)")
	fs.Int64Var(&PingSeed, "ping-seed", PingSeed, "Seed for simulated ping latency, 0 uses the current time")

	// Parse flags - these will override environment variables if provided
	_ = fs.Parse(args)

	if HistorySize <= 0 {
		HistorySize = 50
	}

	// Log final values
	log.Info("Snapshot path is: %s", SnapshotPath)
	log.Info("MySQL snapshot store enabled: %v", SnapshotDSN != "")
}
