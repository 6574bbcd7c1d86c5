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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCommand(t *testing.T) {
	before := testutil.ToFloat64(commandsTotal.WithLabelValues("ls"))
	RecordCommand("ls", time.Millisecond)
	RecordCommand("ls", time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(commandsTotal.WithLabelValues("ls")))
}

func TestRecordAutocomplete(t *testing.T) {
	valid := testutil.ToFloat64(autocompleteTotal.WithLabelValues("valid"))
	invalid := testutil.ToFloat64(autocompleteTotal.WithLabelValues("invalid"))

	RecordAutocomplete(true)
	RecordAutocomplete(false)
	RecordAutocomplete(false)

	assert.Equal(t, valid+1, testutil.ToFloat64(autocompleteTotal.WithLabelValues("valid")))
	assert.Equal(t, invalid+2, testutil.ToFloat64(autocompleteTotal.WithLabelValues("invalid")))
}

func TestPingAndEntities(t *testing.T) {
	before := testutil.ToFloat64(pingSessionsTotal)
	RecordPing()
	assert.Equal(t, before+1, testutil.ToFloat64(pingSessionsTotal))

	SetEntities(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(entities))
}

func TestHandler(t *testing.T) {
	RecordPing()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "vshell_ping_sessions_total"))
}
