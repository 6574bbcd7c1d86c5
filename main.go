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

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/flag"
	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/repl"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/store"
	"github.com/alibaba/opensandbox/vshell/pkg/util/safego"
	"github.com/alibaba/opensandbox/vshell/pkg/web"
)

// main wires the shell and serves it over HTTP or in this terminal.
func main() {
	flag.InitFlags()

	log.SetLevel(flag.ServerLogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore := newStore()
	defer closeStore()

	seed := flag.PingSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clk := clock.New()
	sess := session.New(flag.HistorySize, rand.New(rand.NewSource(time.Now().UnixNano())))
	runner := network.NewRunner(clk, rand.New(rand.NewSource(seed)))
	dispatcher := shell.New(sess, st, runner, clk)
	if err := dispatcher.Load(ctx); err != nil {
		log.Warn("starting from the default session: %v", err)
	}
	engine := autocomplete.New(sess)

	if flag.Interactive {
		if err := repl.New(dispatcher, engine).Run(ctx); err != nil {
			log.Error("terminal session failed: %v", err)
			os.Exit(1)
		}
		return
	}

	router := web.NewRouter(flag.ServerAccessToken, dispatcher, engine)
	addr := fmt.Sprintf(":%d", flag.ServerPort)
	server := &http.Server{Addr: addr, Handler: router}
	safego.Go(func() {
		<-ctx.Done()
		dispatcher.Interrupt()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), flag.ApiGracefulShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	log.Info("vshell listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to start vshell server: %v", err)
		return
	}
	if err := dispatcher.Save(context.Background()); err != nil {
		log.Error("failed to save session on shutdown: %v", err)
	}
}

func newStore() (store.Store, func()) {
	if flag.SnapshotDSN != "" {
		s := store.NewMySQLStore(flag.SnapshotDSN)
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn("closing snapshot database: %v", err)
			}
		}
	}
	return store.NewFileStore(flag.SnapshotPath), func() {}
}
