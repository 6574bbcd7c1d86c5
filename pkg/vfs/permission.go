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

package vfs

import "strings"

// Permission is one atomic capability of an entity.
type Permission string

const (
	UserRead        Permission = "UserRead"
	UserWrite       Permission = "UserWrite"
	UserExecutable  Permission = "UserExecutable"
	AdminRead       Permission = "AdminRead"
	AdminWrite      Permission = "AdminWrite"
	AdminExecutable Permission = "AdminExecutable"

	// None marks an entity that grants nothing at all.
	None Permission = "None"
)

// PermissionFormatMessage is shown whenever a permission bitstring fails to parse.
const PermissionFormatMessage = `permission sets are 6 bits (format "011011")`

// permissionTemplate is the bit order of the textual form.
var permissionTemplate = [...]Permission{
	UserRead,
	UserWrite,
	UserExecutable,
	AdminRead,
	AdminWrite,
	AdminExecutable,
}

// DisplayPermissions renders perms as a 6 character 0/1 string.
func DisplayPermissions(perms []Permission) string {
	var b strings.Builder
	b.Grow(len(permissionTemplate))
	for _, p := range permissionTemplate {
		if HasPermission(perms, p) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParsePermissions decodes a 6 character 0/1 string. Any other character, or a
// different length, reports false. A string without any bit set yields
// []Permission{None}.
func ParsePermissions(bits string) ([]Permission, bool) {
	if len(bits) != len(permissionTemplate) {
		return nil, false
	}

	var perms []Permission
	for i := 0; i < len(bits); i++ {
		switch bits[i] {
		case '1':
			perms = append(perms, permissionTemplate[i])
		case '0':
		default:
			return nil, false
		}
	}
	if len(perms) == 0 {
		return []Permission{None}, true
	}
	return perms, true
}

// MustPermissions is ParsePermissions for literals known to be valid.
func MustPermissions(bits string) []Permission {
	perms, ok := ParsePermissions(bits)
	if !ok {
		panic("vfs: invalid permission literal " + bits)
	}
	return perms
}

// HasPermission reports whether p is granted by perms.
func HasPermission(perms []Permission, p Permission) bool {
	for _, have := range perms {
		if have == p {
			return true
		}
	}
	return false
}
