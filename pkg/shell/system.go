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

package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alibaba/opensandbox/vshell/pkg/command"
	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/metrics"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/payload"
	"github.com/alibaba/opensandbox/vshell/pkg/render"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

// helpFor resolves a topic as a program in /system/programs first, then through
// the built-in table. Unrecognized topics get the generic help.
func (d *Dispatcher) helpFor(fs *vfs.FileSystem, topic string) string {
	if programs := fs.FindDirectory(vfs.ProgramsPath); programs != nil {
		if f := vfs.FindChild(programs, topic, vfs.KindFile); f != nil {
			if t, ok := command.ParseProgram(f.Contents); ok {
				return t.String()
			}
		}
	}
	return command.TopicFor(command.Classify(topic)).String()
}

// listing reads the comma separated value of a bracket in a program file.
func listing(fs *vfs.FileSystem, program, key string) []string {
	programs := fs.FindDirectory(vfs.ProgramsPath)
	f := vfs.FindChild(programs, program, vfs.KindFile)
	if f == nil {
		return nil
	}
	value, ok := payload.ParseBrackets(f.Contents).Get(key)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (d *Dispatcher) commands(c *call) string {
	names := listing(c.fs, "commands", "COMMANDS")
	if len(names) == 0 {
		for _, cmd := range command.All() {
			names = append(names, cmd.Name())
		}
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		topic := command.TopicFor(command.Classify(name))
		rows = append(rows, []string{name, topic.Description})
	}
	return render.Table([]string{"COMMAND", "DESCRIPTION"}, rows)
}

func (d *Dispatcher) colors(c *call) string {
	names := listing(c.fs, "colors", "COLORS")
	if len(names) == 0 {
		names = render.ColorNames()
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		hex, ok := render.LookupColor(name)
		if !ok {
			continue
		}
		rows = append(rows, []string{render.Colorize(hex, name), hex})
	}
	return render.Table([]string{"COLOR", "HEX"}, rows)
}

func (d *Dispatcher) color(c *call) string {
	name := strings.ToLower(c.arg(0))
	if _, ok := render.LookupColor(name); !ok {
		return fmt.Sprintf("%q is not a valid color. Use \"colors\" to list them.", c.arg(0))
	}
	d.sess.Color = name
	return fmt.Sprintf("color set to %s", name)
}

// colorHex resolves a stored color, falling back to the first palette entry.
func colorHex(name string) string {
	if hex, ok := render.LookupColor(name); ok {
		return hex
	}
	return render.Palette[0].Hex
}

func (d *Dispatcher) listHardware(c *call) string {
	devices := c.fs.FindDirectory(vfs.DevicesPath)
	if devices == nil || len(devices.Entities) == 0 {
		return "no hardware installed"
	}
	rows := make([][]string, 0, len(devices.Entities))
	for _, e := range devices.Entities {
		if e.IsDirectory {
			continue
		}
		fields := payload.ParseLines(e.Contents)
		details := make([]string, 0, len(fields))
		for _, f := range fields {
			details = append(details, f.Key+": "+f.Value)
		}
		rows = append(rows, []string{e.Name, strings.Join(details, ", ")})
	}
	return render.Table([]string{"DEVICE", "DETAILS"}, rows)
}

func (d *Dispatcher) network(c *call) string {
	opts, err := network.ParseListFlags(c.args)
	if err != nil {
		return err.Error()
	}
	devices := network.Devices(c.fs.FindDirectory(vfs.NetworkPath))
	if len(devices) == 0 {
		return "no network adapters"
	}
	return network.RenderDevices(devices, opts)
}

func (d *Dispatcher) ping(c *call) Response {
	address := c.arg(0)
	family, err := network.ParsePingFlags(c.args[1:])
	if err != nil {
		return text(err.Error())
	}
	if err := network.ValidateAddress(address, family); err != nil {
		return text(err.Error())
	}

	header, err := d.pinger.Start(address, c.obs.OnAsyncOutput, c.obs.OnAsyncComplete)
	if errors.Is(err, network.ErrPingActive) {
		return text(err.Error())
	}
	if err != nil {
		log.Error("ping %s failed to start: %v", address, err)
		return text("")
	}
	metrics.RecordPing()
	return Response{Text: header, Action: ActionPing}
}

func (d *Dispatcher) history() string {
	entries := d.sess.History.Entries()
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%4d  %s", i+1, e)
	}
	return b.String()
}

func (d *Dispatcher) save(c *call) string {
	if err := d.saveLocked(c.ctx); err != nil {
		log.Error("%v", err)
		return fmt.Sprintf("could not save the session: %v", err)
	}
	return "session saved"
}

func (d *Dispatcher) deleteSave(c *call) string {
	if err := d.deleteSaveLocked(c.ctx); err != nil {
		log.Error("%v", err)
		return fmt.Sprintf("could not delete the saved session: %v", err)
	}
	return "saved session deleted, starting over"
}
