// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUlid_Sortable(t *testing.T) {
	a := GetUlid()
	b := GetUlid()
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestShortId(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := ShortId()
		assert.NotEmpty(t, s)
		assert.False(t, seen[s])
		seen[s] = true
	}
}

func TestRandomAlnum(t *testing.T) {
	s, err := RandomAlnum(128)
	require.NoError(t, err)
	assert.Len(t, s, 128)
	assert.Regexp(t, regexp.MustCompile(`^[a-zA-Z0-9]{128}$`), s)

	other, err := RandomAlnum(128)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
