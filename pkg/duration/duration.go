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
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// one or more "<n><unit>" groups, e.g. "7d", "1w3d", "2d12h"
	termRegex = regexp.MustCompile(`(\d+)([smhdw])`)
	fullRegex = regexp.MustCompile(`^(\d+[smhdw])+$`)

	ErrInvalidFormat = errors.New("invalid duration format")
)

var units = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// Parse accepts anything time.ParseDuration does, plus day and week units
// which may be combined with the usual ones ("1w", "7d", "2d12h").
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidFormat
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
		}
		return d, nil
	}
	if !fullRegex.MatchString(s) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
	}

	var total time.Duration
	for _, m := range termRegex.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
		}
		total += time.Duration(n) * units[m[2]]
	}
	return total, nil
}

// MustParse is Parse for package-level defaults; it panics on bad input.
func MustParse(s string) time.Duration {
	d, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("duration: %v", err))
	}
	return d
}
