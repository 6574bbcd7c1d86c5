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

import "strings"

// Command identifies a handler of the shell.
type Command string

const (
	Unknown             Command = "Unknown"
	Help                Command = "Help"
	Commands            Command = "Commands"
	Color               Command = "Color"
	Colors              Command = "Colors"
	Exit                Command = "Exit"
	ClearScreen         Command = "ClearScreen"
	ListDirectory       Command = "ListDirectory"
	ChangeDirectory     Command = "ChangeDirectory"
	PrintDirectory      Command = "PrintDirectory"
	ListHardware        Command = "ListHardware"
	Date                Command = "Date"
	Time                Command = "Time"
	DateTime            Command = "DateTime"
	Ping                Command = "Ping"
	Network             Command = "Network"
	MakeUser            Command = "MakeUser"
	DeleteUser          Command = "DeleteUser"
	MakeGroup           Command = "MakeGroup"
	DeleteGroup         Command = "DeleteGroup"
	AddUserToGroup      Command = "AddUserToGroup"
	DeleteUserFromGroup Command = "DeleteUserFromGroup"
	ViewGroup           Command = "ViewGroup"
	Save                Command = "Save"
	DeleteSave          Command = "DeleteSave"
	History             Command = "History"
	Find                Command = "Find"
	MakeFile            Command = "MakeFile"
	MakeDirectory       Command = "MakeDirectory"
	DeleteFile          Command = "DeleteFile"
	DeleteDirectory     Command = "DeleteDirectory"
	MoveFile            Command = "MoveFile"
	MoveDirectory       Command = "MoveDirectory"
	EditFile            Command = "EditFile"
	ViewFile            Command = "ViewFile"
	ViewPermissions     Command = "ViewPermissions"
	ChangePermissions   Command = "ChangePermissions"
)

// synonyms lists the accepted spellings, canonical first.
var synonyms = []struct {
	cmd   Command
	names []string
}{
	{Help, []string{"help", "h", "?"}},
	{Commands, []string{"commands", "cmds"}},
	{Color, []string{"color", "colour"}},
	{Colors, []string{"colors", "colours"}},
	{Exit, []string{"exit", "quit", "logout"}},
	{ClearScreen, []string{"cls", "clear", "clearscreen"}},
	{ListDirectory, []string{"ls", "list", "listdir"}},
	{ChangeDirectory, []string{"cd", "change", "changedir"}},
	{PrintDirectory, []string{"pwd", "whereami"}},
	{ListHardware, []string{"hw", "hardware", "listhardware"}},
	{Date, []string{"date"}},
	{Time, []string{"time"}},
	{DateTime, []string{"now", "datetime", "dt", "current"}},
	{Ping, []string{"ping"}},
	{Network, []string{"network", "net"}},
	{MakeUser, []string{"mu", "makeuser"}},
	{DeleteUser, []string{"du", "deleteuser"}},
	{MakeGroup, []string{"mg", "makegroup"}},
	{DeleteGroup, []string{"dg", "deletegroup"}},
	{AddUserToGroup, []string{"aug", "adduser", "addusertogroup"}},
	{DeleteUserFromGroup, []string{"dug", "removeuser", "deleteuserfromgroup"}},
	{ViewGroup, []string{"vg", "viewgroup"}},
	{Save, []string{"save"}},
	{DeleteSave, []string{"deletesave"}},
	{History, []string{"history", "hist"}},
	{Find, []string{"find", "search"}},
	{MakeFile, []string{"mf", "makefile"}},
	{MakeDirectory, []string{"md", "makedirectory", "makedir"}},
	{DeleteFile, []string{"df", "deletefile"}},
	{DeleteDirectory, []string{"dd", "deletedir", "deletedirectory"}},
	{MoveFile, []string{"mvf", "movefile"}},
	{MoveDirectory, []string{"mvd", "movedir", "movedirectory"}},
	{EditFile, []string{"edit"}},
	{ViewFile, []string{"vw", "view"}},
	{ViewPermissions, []string{"vp", "viewperm", "viewpermissions"}},
	{ChangePermissions, []string{"chp", "changeperm", "changepermissions"}},
}

var (
	byName    = make(map[string]Command)
	canonical = make(map[Command]string)
	aliases   = make(map[Command][]string)
)

func init() {
	for _, s := range synonyms {
		canonical[s.cmd] = s.names[0]
		aliases[s.cmd] = s.names
		for _, name := range s.names {
			byName[name] = s.cmd
		}
	}
}

// Classify maps a command token to its Command. Every input yields a value.
func Classify(token string) Command {
	if cmd, ok := byName[strings.ToLower(token)]; ok {
		return cmd
	}
	return Unknown
}

// Tokenize splits on single spaces. Empty tokens left by repeated spaces are kept.
func Tokenize(input string) []string {
	return strings.Split(input, " ")
}

// Name returns the canonical spelling of cmd, empty for Unknown.
func (c Command) Name() string {
	return canonical[c]
}

// Aliases returns every spelling of cmd, canonical first.
func (c Command) Aliases() []string {
	return append([]string(nil), aliases[c]...)
}

// All returns the known commands in listing order.
func All() []Command {
	out := make([]Command, 0, len(synonyms))
	for _, s := range synonyms {
		out = append(out, s.cmd)
	}
	return out
}

// RequiresArgument reports whether a bare invocation is redirected to help.
func (c Command) RequiresArgument() bool {
	switch c {
	case Color, ChangeDirectory, ViewFile, MakeFile, MakeDirectory, EditFile,
		ViewPermissions, ChangePermissions, DeleteFile, DeleteDirectory, Ping,
		MoveFile, MoveDirectory, MakeUser, DeleteUser, MakeGroup, DeleteGroup,
		AddUserToGroup, DeleteUserFromGroup, ViewGroup, Find:
		return true
	default:
		return false
	}
}
