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
	"math/rand"
	"net/netip"
	"strings"
)

// Family selects which address syntaxes ping accepts.
type Family int

const (
	FamilyAny Family = iota
	FamilyIPv6
	FamilyIPv8
)

func (f Family) String() string {
	switch f {
	case FamilyIPv6:
		return "ipv6"
	case FamilyIPv8:
		return "ipv8"
	default:
		return "ipv6 or ipv8"
	}
}

// IPv8Length is the fixed length of a simulated ipv8 address.
const IPv8Length = 16

// IPv8Alphabet lists every character an ipv8 address may hold. It leaves out
// whitespace, ':' and '/' so addresses survive payload lines and paths.
const IPv8Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*-_+=~"

const ipv8LoopbackPrefix = "loop"

// GenerateIPv6 returns a random conventional v6 address. Loopback adapters get a
// link-local one.
func GenerateIPv6(r *rand.Rand, loopback bool) string {
	var b [16]byte
	r.Read(b[:])
	if loopback {
		b[0], b[1] = 0xfe, 0x80
		for i := 2; i < 8; i++ {
			b[i] = 0
		}
	} else {
		b[0] = 0x20 | (b[0] & 0x0f)
	}
	return netip.AddrFrom16(b).String()
}

// GenerateIPv8 returns a random ipv8 address. Loopback adapters get the loop prefix.
func GenerateIPv8(r *rand.Rand, loopback bool) string {
	buf := make([]byte, IPv8Length)
	start := 0
	if loopback {
		start = copy(buf, ipv8LoopbackPrefix)
	}
	for i := start; i < len(buf); i++ {
		buf[i] = IPv8Alphabet[r.Intn(len(IPv8Alphabet))]
	}
	return string(buf)
}

// IsIPv6 accepts any conventional address.
func IsIPv6(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

// IsIPv8 accepts exactly IPv8Length characters drawn from IPv8Alphabet.
func IsIPv8(s string) bool {
	if len(s) != IPv8Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(IPv8Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// ValidateAddress checks addr against the requested family.
func ValidateAddress(addr string, family Family) error {
	if family != FamilyIPv8 && IsIPv6(addr) {
		return nil
	}
	if family != FamilyIPv6 && IsIPv8(addr) {
		return nil
	}
	return fmt.Errorf("%q is not a valid %s address", addr, family)
}
