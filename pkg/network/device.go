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
	"strconv"

	"github.com/alibaba/opensandbox/vshell/pkg/payload"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

// Device is one simulated adapter read from a /system/network pseudo-file.
type Device struct {
	Name   string
	Device string
	Active bool
	IPv6   string
	IPv8   string
}

// ParseDevice reads the adapter described by a network file.
func ParseDevice(e *vfs.Entity) Device {
	fields := payload.ParseLines(e.Contents)
	d := Device{Name: e.DisplayName()}
	d.Device, _ = fields.Get("device")
	d.IPv6, _ = fields.Get("ipv6")
	d.IPv8, _ = fields.Get("ipv8")
	if active, ok := fields.Get("active"); ok {
		d.Active, _ = strconv.ParseBool(active)
	}
	return d
}

// Contents encodes d the way ParseDevice reads it.
func (d Device) Contents() string {
	return payload.FormatLines(payload.Fields{
		{Key: "device", Value: d.Device},
		{Key: "active", Value: strconv.FormatBool(d.Active)},
		{Key: "ipv6", Value: d.IPv6},
		{Key: "ipv8", Value: d.IPv8},
	})
}

// Devices collects every adapter file directly inside dir.
func Devices(dir *vfs.Entity) []Device {
	if dir == nil {
		return nil
	}
	var devices []Device
	for _, child := range dir.Entities {
		if child.IsDirectory {
			continue
		}
		devices = append(devices, ParseDevice(child))
	}
	return devices
}
