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

package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		input     string
		expected  time.Duration
		wantError bool
	}{
		{"90s", 90 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"7d", 7 * day, false},
		{"1w", 7 * day, false},
		{"1w3d", 10 * day, false},
		{"2d12h", 60 * time.Hour, false},
		{" 1d ", day, false},

		{"", 0, true},
		{"abc", 0, true},
		{"100", 0, true},
		{"1x", 0, true},
		{"-1h", 0, true},
		{"1 d", 0, true},
		{"1.5d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, 48*time.Hour, MustParse("2d"))
	assert.Panics(t, func() { MustParse("soon") })
}
