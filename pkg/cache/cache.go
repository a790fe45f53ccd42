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

package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("cache: key not found")
	// ErrSkipWrite may be returned by an UpdateFunc to leave the key unchanged.
	ErrSkipWrite = errors.New("cache: skip write")
	// ErrConflict is returned when an Update keeps losing a concurrent race.
	ErrConflict = errors.New("cache: too many concurrent modifications")
)

// UpdateFunc receives the current value (exists=false when absent) and returns
// the value to store.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// ICache is the key/value option store shared by the registry, settings and
// the plugin state cache.
type ICache interface {
	// Get 获取缓存值
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置缓存值, ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del 删除缓存
	Del(ctx context.Context, keys ...string) error
	// Update 原子地读-改-写, 值不过期
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
