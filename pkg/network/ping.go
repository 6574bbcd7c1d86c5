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
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Probes is the number of probes a ping session sends.
const Probes = 5

const (
	minLatencyMillis = 5
	maxLatencyMillis = 60
)

// ErrPingActive is returned when a ping is started while another runs.
var ErrPingActive = errors.New("a ping is already running")

// State of a ping session.
type State int

const (
	Idle State = iota
	AwaitingProbe
	ProbeAcked
	Finished
)

func (s State) String() string {
	switch s {
	case AwaitingProbe:
		return "AwaitingProbe"
	case ProbeAcked:
		return "ProbeAcked"
	case Finished:
		return "Finished"
	default:
		return "Idle"
	}
}

// Session is the progress of one ping.
type Session struct {
	Address  string
	Sent     int
	Received int
	Elapsed  time.Duration

	state   State
	pending time.Duration
}

// Pinger advances a ping session one scheduler tick at a time. It is not safe for
// concurrent use; Runner serializes access.
type Pinger struct {
	rng     *rand.Rand
	session Session
}

// NewPinger returns an idle pinger drawing latencies from rng.
func NewPinger(rng *rand.Rand) *Pinger {
	return &Pinger{rng: rng}
}

// State reports the current state.
func (p *Pinger) State() State {
	return p.session.state
}

// Session returns a copy of the current progress.
func (p *Pinger) Session() Session {
	return p.session
}

func (p *Pinger) active() bool {
	return p.session.state == AwaitingProbe || p.session.state == ProbeAcked
}

// Start opens a session for addr and returns the header line together with the
// delay before the first tick.
func (p *Pinger) Start(addr string) (string, time.Duration, error) {
	if p.active() {
		return "", 0, ErrPingActive
	}
	p.session = Session{Address: addr, state: AwaitingProbe}
	p.session.pending = p.latency()
	return fmt.Sprintf("PING %s: %d probes", addr, Probes), p.session.pending, nil
}

// Tick handles one scheduler tick. It returns the line to emit, the delay until the
// next tick, and whether the session just finished.
func (p *Pinger) Tick() (string, time.Duration, bool) {
	if !p.active() {
		return "", 0, true
	}
	if p.session.Sent >= Probes {
		return p.finalize(), 0, true
	}

	s := &p.session
	latency := s.pending
	s.Elapsed += latency
	s.Sent++
	s.Received = s.Sent
	s.state = ProbeAcked
	s.pending = p.latency()

	line := fmt.Sprintf("reply from %s: seq=%d time=%s", s.Address, s.Sent, millis(latency))
	return line, s.pending, false
}

// Interrupt finalizes an active session immediately. It reports false when idle.
func (p *Pinger) Interrupt() (string, bool) {
	if !p.active() {
		return "", false
	}
	return p.finalize(), true
}

// Reset returns a finished pinger to Idle.
func (p *Pinger) Reset() {
	if !p.active() {
		p.session = Session{}
	}
}

func (p *Pinger) finalize() string {
	p.session.state = Finished
	return Summary(p.session)
}

// Summary renders the statistics block of s.
func Summary(s Session) string {
	return fmt.Sprintf("--- %s ping statistics ---\n%d packets transmitted, %d packets received, 0%% packet loss, time %s",
		s.Address, s.Sent, s.Received, millis(s.Elapsed))
}

// latency is a uniform base latency scaled by a random multiplier in [1,2).
func (p *Pinger) latency() time.Duration {
	base := minLatencyMillis + p.rng.Float64()*(maxLatencyMillis-minLatencyMillis)
	ms := base * (1 + p.rng.Float64())
	return time.Duration(ms * float64(time.Millisecond))
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
