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

package command

import (
	"fmt"
	"strings"

	"github.com/alibaba/opensandbox/vshell/pkg/payload"
)

// Topic is the help entry of one command.
type Topic struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
}

var descriptions = map[Command][2]string{
	Help:                {"shows help for a command", "help <command>"},
	Commands:            {"lists every available command", "commands"},
	Color:               {"changes the terminal color", "color <name|#rrggbb>"},
	Colors:              {"lists the available terminal colors", "colors"},
	Exit:                {"leaves the shell", "exit"},
	ClearScreen:         {"clears the screen", "cls"},
	ListDirectory:       {"lists the contents of a directory", "ls [directory]"},
	ChangeDirectory:     {"changes the current directory", "cd <directory|..|~|/>"},
	PrintDirectory:      {"prints the current directory", "pwd"},
	ListHardware:        {"lists the installed hardware", "hw"},
	Date:                {"prints the current date", "date"},
	Time:                {"prints the current time", "time"},
	DateTime:            {"prints the current date and time", "now"},
	Ping:                {"sends five probes to an address", "ping <address> [-6|--ipv6] [-8|--ipv8]"},
	Network:             {"lists the network adapters", "network [-n] [-d] [-a] [-6] [-8] [-x]"},
	MakeUser:            {"creates a user with a home directory", "mu <user>"},
	DeleteUser:          {"deletes a user", "du <user>"},
	MakeGroup:           {"creates a group", "mg <group>"},
	DeleteGroup:         {"deletes a group", "dg <group>"},
	AddUserToGroup:      {"adds a user to a group", "aug <user> <group>"},
	DeleteUserFromGroup: {"removes a user from a group", "dug <user> <group>"},
	ViewGroup:           {"lists the members of a group", "vg <group>"},
	Save:                {"saves the session", "save"},
	DeleteSave:          {"deletes the saved session and starts over", "deletesave"},
	History:             {"lists previously entered commands", "history"},
	Find:                {"finds entities below the current directory", "find <pattern>"},
	MakeFile:            {"creates a file", "mf <name[.ext]>"},
	MakeDirectory:       {"creates a directory", "md <name>"},
	DeleteFile:          {"deletes a file", "df <file>"},
	DeleteDirectory:     {"deletes a directory", "dd <directory> [-r|--recurse]"},
	MoveFile:            {"moves a file into a directory", "mvf <file> <directory>"},
	MoveDirectory:       {"moves a directory into another directory", "mvd <directory> <directory>"},
	EditFile:            {"edits the contents of a file", "edit <file>"},
	ViewFile:            {"prints the contents of a file", "vw <file>"},
	ViewPermissions:     {"prints the permissions of a file or directory", "vp <entity>"},
	ChangePermissions:   {"changes the permissions of a file or directory", "chp <entity> <bits>"},
}

// TopicFor returns the built-in help of cmd. Unknown commands get the help topic.
func TopicFor(cmd Command) Topic {
	d, ok := descriptions[cmd]
	if !ok {
		cmd = Help
		d = descriptions[Help]
	}
	return Topic{
		Name:        cmd.Name(),
		Aliases:     cmd.Aliases(),
		Description: d[0],
		Usage:       d[1],
	}
}

// String renders the topic for the terminal.
func (t Topic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", t.Name, t.Description)
	if len(t.Aliases) > 1 {
		fmt.Fprintf(&b, "aliases: %s\n", strings.Join(t.Aliases, ", "))
	}
	fmt.Fprintf(&b, "usage: %s", t.Usage)
	return b.String()
}

// Program encodes the topic as the contents of a programs executable.
func (t Topic) Program() string {
	return payload.FormatBrackets(payload.Fields{
		{Key: "NAME", Value: t.Name},
		{Key: "ALIASES", Value: strings.Join(t.Aliases, ", ")},
		{Key: "DESCRIPTION", Value: t.Description},
		{Key: "USAGE", Value: t.Usage},
	})
}

// ParseProgram reads a topic back from executable contents. Programs without a
// NAME bracket carry no help.
func ParseProgram(contents string) (Topic, bool) {
	fields := payload.ParseBrackets(contents)
	name, ok := fields.Get("NAME")
	if !ok || name == "" {
		return Topic{}, false
	}
	t := Topic{Name: name, Aliases: []string{name}}
	if v, ok := fields.Get("ALIASES"); ok && v != "" {
		t.Aliases = splitList(v)
	}
	t.Description, _ = fields.Get("DESCRIPTION")
	t.Usage, _ = fields.Get("USAGE")
	if t.Usage == "" {
		t.Usage = name
	}
	return t, true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
