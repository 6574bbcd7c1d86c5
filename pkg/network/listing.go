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
	"fmt"
	"strconv"

	"github.com/alibaba/opensandbox/vshell/pkg/render"
)

// ListOptions controls which columns the network listing shows.
type ListOptions struct {
	HideName   bool
	HideDevice bool
	HideActive bool
	HideIPv6   bool
	HideIPv8   bool
}

// ParseListFlags reads network listing flags.
func ParseListFlags(args []string) (ListOptions, error) {
	var opts ListOptions
	for _, arg := range args {
		switch arg {
		case "":
		case "-n", "--hidename":
			opts.HideName = true
		case "-d", "--hidedevice":
			opts.HideDevice = true
		case "-a", "--hideactive":
			opts.HideActive = true
		case "-6", "--ipv6":
			opts.HideIPv6 = false
			opts.HideIPv8 = true
		case "-8", "--ipv8":
			opts.HideIPv8 = false
			opts.HideIPv6 = true
		case "-x", "--hideaddress":
			opts.HideIPv6 = true
			opts.HideIPv8 = true
		default:
			return ListOptions{}, fmt.Errorf("%q is not a valid flag", arg)
		}
	}
	return opts, nil
}

// ParsePingFlags reads the address family flags of ping.
func ParsePingFlags(args []string) (Family, error) {
	family := FamilyAny
	for _, arg := range args {
		switch arg {
		case "":
		case "-6", "--ipv6":
			family = FamilyIPv6
		case "-8", "--ipv8":
			family = FamilyIPv8
		default:
			return FamilyAny, fmt.Errorf("%q is not a valid flag", arg)
		}
	}
	return family, nil
}

// RenderDevices draws the adapter table with the columns left visible by opts.
func RenderDevices(devices []Device, opts ListOptions) string {
	type column struct {
		header string
		value  func(Device) string
	}
	var cols []column
	if !opts.HideName {
		cols = append(cols, column{"NAME", func(d Device) string { return d.Name }})
	}
	if !opts.HideDevice {
		cols = append(cols, column{"DEVICE", func(d Device) string { return d.Device }})
	}
	if !opts.HideActive {
		cols = append(cols, column{"ACTIVE", func(d Device) string { return strconv.FormatBool(d.Active) }})
	}
	if !opts.HideIPv6 {
		cols = append(cols, column{"IPV6", func(d Device) string { return d.IPv6 }})
	}
	if !opts.HideIPv8 {
		cols = append(cols, column{"IPV8", func(d Device) string { return d.IPv8 }})
	}
	if len(cols) == 0 {
		return ""
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.value(d)
		}
		rows = append(rows, row)
	}
	return render.Table(headers, rows)
}
