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

package controller

import (
	"context"
	"io"
	"net/http"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/util/safego"
	"github.com/alibaba/opensandbox/vshell/pkg/web/model"
)

var sseHeaders = map[string]string{
	"Content-Type":      "text/event-stream",
	"Cache-Control":     "no-cache",
	"Connection":        "keep-alive",
	"X-Accel-Buffering": "no",
}

// keepaliveInterval spaces the ping events of an idle stream.
var keepaliveInterval = 3 * time.Second

func (c *basicController) setupSSEResponse() {
	for key, value := range sseHeaders {
		c.ctx.Writer.Header().Set(key, value)
	}
	if flusher, ok := c.ctx.Writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

// asyncOutput buffers ping output until the response is ready to stream it.
// The runner invokes the callbacks with its lock held, so they never block.
type asyncOutput struct {
	lines chan string
	done  chan struct{}
}

func newAsyncOutput() *asyncOutput {
	return &asyncOutput{
		lines: make(chan string, network.Probes+2),
		done:  make(chan struct{}),
	}
}

func (o *asyncOutput) observer() shell.Observer {
	return shell.ObserverFuncs{
		Output: func(line string) {
			select {
			case o.lines <- line:
			default:
				log.Warn("ping output dropped: %s", line)
			}
		},
		Complete: func() { close(o.done) },
	}
}

// drain returns the lines still buffered.
func (o *asyncOutput) drain() []string {
	var lines []string
	for {
		select {
		case line := <-o.lines:
			lines = append(lines, line)
		default:
			return lines
		}
	}
}

// streamPing forwards the output of the running ping as SSE events until it
// completes. A client that goes away interrupts the ping.
func (c *ShellController) streamPing(ctx context.Context, header string, out *asyncOutput) {
	startAt := time.Now()
	c.writeSingleEvent("OnPingInit", model.ServerStreamEvent{
		Type:      model.StreamEventTypeInit,
		Text:      header,
		Timestamp: time.Now().UnixMilli(),
	}.ToJSON(), true)

	keepaliveCtx, cancel := context.WithCancel(ctx)
	keepaliveDone := make(chan struct{})
	safego.Go(func() {
		defer close(keepaliveDone)
		c.ping(keepaliveCtx)
	})
	defer func() {
		cancel()
		<-keepaliveDone
	}()

	for {
		select {
		case line := <-out.lines:
			c.writeStdout(line)
		case <-out.done:
			for _, line := range out.drain() {
				c.writeStdout(line)
			}
			c.writeSingleEvent("OnPingComplete", model.ServerStreamEvent{
				Type:          model.StreamEventTypeComplete,
				ExecutionTime: time.Since(startAt).Milliseconds(),
				Timestamp:     time.Now().UnixMilli(),
			}.ToJSON(), true)
			return
		case <-ctx.Done():
			if c.shell.Interrupt() {
				log.Warn("client left during ping, interrupted")
			}
			return
		}
	}
}

func (c *ShellController) writeStdout(line string) {
	c.writeSingleEvent("OnPingStdout", model.ServerStreamEvent{
		Type:      model.StreamEventTypeStdout,
		Text:      line,
		Timestamp: time.Now().UnixMilli(),
	}.ToJSON(), true)
}

// writeSingleEvent serializes one SSE frame.
func (c *ShellController) writeSingleEvent(handler string, data []byte, verbose bool) {
	if c == nil || c.ctx == nil || c.ctx.Writer == nil {
		return
	}

	select {
	case <-c.ctx.Request.Context().Done():
		log.Error("StreamEvent.%s: client disconnected", handler)
		return
	default:
	}

	c.chunkWriter.Lock()
	defer c.chunkWriter.Unlock()
	defer func() {
		if flusher, ok := c.ctx.Writer.(http.Flusher); ok {
			flusher.Flush()
		}
	}()

	payload := append(data, '\n', '\n')
	n, err := c.ctx.Writer.Write(payload)
	if err == nil && n != len(payload) {
		err = io.ErrShortWrite
	}

	if err != nil {
		log.Error("StreamEvent.%s write data %s error: %v", handler, string(data), err)
	} else {
		if verbose {
			log.Info("StreamEvent.%s write data %s", handler, string(data))
		}
	}
}

// ping periodically keeps the SSE connection alive.
func (c *ShellController) ping(ctx context.Context) {
	wait.Until(func() {
		if c.ctx.Writer == nil {
			return
		}
		payload := model.ServerStreamEvent{
			Type:      model.StreamEventTypePing,
			Text:      "pong",
			Timestamp: time.Now().UnixMilli(),
		}.ToJSON()
		c.writeSingleEvent("Ping", payload, false)
	}, keepaliveInterval, ctx.Done())
}
