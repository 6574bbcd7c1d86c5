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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

func TestParseDevice(t *testing.T) {
	want := Device{Name: "eth-0.net", Device: "ethernet", Active: true, IPv6: "2001:db8::1", IPv8: "abcdefgh12345678"}
	file := vfs.NewFile("eth-0.net", want.Contents(), nil)

	assert.Equal(t, want, ParseDevice(file))

	dir := vfs.NewDirectory("network", nil)
	dir.Entities = []*vfs.Entity{file, vfs.NewDirectory("nested", nil), vfs.NewFile("lo", "device:loopback", nil)}
	devices := Devices(dir)
	require.Len(t, devices, 2)
	assert.Equal(t, "loopback", devices[1].Device)
	assert.False(t, devices[1].Active)
}

func TestGenerateAddresses(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		v6 := GenerateIPv6(r, false)
		assert.True(t, IsIPv6(v6), v6)
		assert.False(t, strings.HasPrefix(v6, "fe80"), v6)

		lo6 := GenerateIPv6(r, true)
		assert.True(t, strings.HasPrefix(lo6, "fe80::"), lo6)

		v8 := GenerateIPv8(r, false)
		assert.True(t, IsIPv8(v8), v8)
		assert.Len(t, v8, IPv8Length)
		for _, c := range v8 {
			assert.True(t, strings.ContainsRune(IPv8Alphabet, c), "%q in %s", c, v8)
		}

		lo8 := GenerateIPv8(r, true)
		assert.True(t, IsIPv8(lo8), lo8)
		assert.True(t, strings.HasPrefix(lo8, "loop"), lo8)
	}
}

func TestValidateAddress(t *testing.T) {
	v8 := "abcdefgh12345678"

	assert.NoError(t, ValidateAddress("::1", FamilyAny))
	assert.NoError(t, ValidateAddress("10.0.0.1", FamilyIPv6))
	assert.NoError(t, ValidateAddress(v8, FamilyAny))
	assert.NoError(t, ValidateAddress(v8, FamilyIPv8))

	err := ValidateAddress(v8, FamilyIPv6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid ipv6 address")

	err = ValidateAddress("::1", FamilyIPv8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid ipv8 address")

	err = ValidateAddress("nope", FamilyAny)
	require.Error(t, err)
	assert.Equal(t, `"nope" is not a valid ipv6 or ipv8 address`, err.Error())

	for _, addr := range []string{"ab#d-fgh!jk@mn%p", "LOOPabcdefgh1234", "ABCDEFGH12345678", "~=+_-*&^%$#@!xyz"} {
		assert.NoError(t, ValidateAddress(addr, FamilyIPv8), addr)
		assert.NoError(t, ValidateAddress(addr, FamilyAny), addr)
	}
	for _, addr := range []string{"short", "abcdefgh1234567:", "abcdefgh/2345678", "abcdefgh 2345678", "abcdefgh12345678x", "abcdefgh1234567\""} {
		assert.False(t, IsIPv8(addr), addr)
	}
}

func TestParseListFlags(t *testing.T) {
	opts, err := ParseListFlags([]string{"-n", "--hideactive", "-6"})
	require.NoError(t, err)
	assert.Equal(t, ListOptions{HideName: true, HideActive: true, HideIPv8: true}, opts)

	opts, err = ParseListFlags([]string{"-6", "--ipv8"})
	require.NoError(t, err)
	assert.True(t, opts.HideIPv6)
	assert.False(t, opts.HideIPv8)

	opts, err = ParseListFlags([]string{"-x"})
	require.NoError(t, err)
	assert.True(t, opts.HideIPv6 && opts.HideIPv8)

	_, err = ParseListFlags([]string{"-q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"-q"`)
}

func TestParsePingFlags(t *testing.T) {
	family, err := ParsePingFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, FamilyAny, family)

	family, err = ParsePingFlags([]string{"--ipv8"})
	require.NoError(t, err)
	assert.Equal(t, FamilyIPv8, family)

	_, err = ParsePingFlags([]string{"-z"})
	assert.Error(t, err)
}

func TestRenderDevices(t *testing.T) {
	devices := []Device{
		{Name: "eth-0", Device: "ethernet", Active: true, IPv6: "2001:db8::1", IPv8: "abcdefgh12345678"},
		{Name: "lo", Device: "loopback", IPv6: "fe80::1", IPv8: "loopabcdefgh1234"},
	}

	out := RenderDevices(devices, ListOptions{})
	for _, want := range []string{"NAME", "DEVICE", "ACTIVE", "IPV6", "IPV8", "eth-0", "loopback", "fe80::1"} {
		assert.Contains(t, out, want)
	}

	out = RenderDevices(devices, ListOptions{HideDevice: true, HideIPv8: true})
	assert.NotContains(t, out, "DEVICE")
	assert.NotContains(t, out, "IPV8")
	assert.Contains(t, out, "2001:db8::1")

	assert.Empty(t, RenderDevices(devices, ListOptions{HideName: true, HideDevice: true, HideActive: true, HideIPv6: true, HideIPv8: true}))
}
