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

package network

import (
	"math/rand"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/util/safego"
)

// Runner drives a Pinger from clock timers on a single goroutine.
type Runner struct {
	clk clock.Clock

	mu     sync.Mutex
	pinger *Pinger
	active *run
}

type run struct {
	stop   chan struct{}
	once   sync.Once
	onLine func(string)
	onDone func()
}

// NewRunner returns a runner ticking on clk.
func NewRunner(clk clock.Clock, rng *rand.Rand) *Runner {
	return &Runner{
		clk:    clk,
		pinger: NewPinger(rng),
	}
}

// Active reports whether a ping is running.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Start begins pinging address. onLine receives every probe line and the summary,
// onDone fires exactly once afterwards. The returned header is not sent to onLine.
// Both callbacks run with the runner locked and must not call back into it.
func (r *Runner) Start(address string, onLine func(string), onDone func()) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return "", ErrPingActive
	}
	r.pinger.Reset()
	header, delay, err := r.pinger.Start(address)
	if err != nil {
		return "", err
	}

	current := &run{
		stop:   make(chan struct{}),
		onLine: onLine,
		onDone: onDone,
	}
	r.active = current
	timer := r.clk.Timer(delay)
	safego.Go(func() { r.loop(current, timer) })

	log.Debug("ping %s started, first probe in %s", address, delay)
	return header, nil
}

func (r *Runner) loop(current *run, timer *clock.Timer) {
	for {
		select {
		case <-current.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		r.mu.Lock()
		if r.active != current {
			r.mu.Unlock()
			return
		}
		line, delay, done := r.pinger.Tick()
		if !done {
			timer = r.clk.Timer(delay)
		}
		current.emit(line)
		if done {
			r.finishLocked(current)
		}
		r.mu.Unlock()

		if done {
			return
		}
	}
}

// Interrupt finalizes the running ping synchronously. It reports false when idle.
func (r *Runner) Interrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.active
	if current == nil {
		return false
	}
	if summary, ok := r.pinger.Interrupt(); ok {
		current.emit(summary)
	}
	r.finishLocked(current)
	return true
}

func (r *Runner) finishLocked(current *run) {
	if r.active == current {
		r.active = nil
	}
	r.pinger.Reset()
	current.once.Do(func() {
		close(current.stop)
		if current.onDone != nil {
			current.onDone()
		}
	})
}

func (c *run) emit(line string) {
	if line != "" && c.onLine != nil {
		c.onLine(line)
	}
}
