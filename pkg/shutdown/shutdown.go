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

package shutdown

import (
	"sync"
	"sync/atomic"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewManager)

// Manager holds the process-wide draining state. Once triggered it stays
// triggered; health checks report it so load balancers stop routing to us.
type Manager struct {
	draining atomic.Bool
	once     sync.Once
	done     chan struct{}

	mu     sync.RWMutex
	reason string
}

func NewManager() *Manager {
	return &Manager{done: make(chan struct{})}
}

// IsShuttingDown returns true once Shutdown has been called.
func (m *Manager) IsShuttingDown() bool {
	return m.draining.Load()
}

// Shutdown starts draining. Only the first call wins; it returns false for later calls.
func (m *Manager) Shutdown(reason string) bool {
	triggered := false
	m.once.Do(func() {
		m.mu.Lock()
		m.reason = reason
		m.mu.Unlock()
		m.draining.Store(true)
		close(m.done)
		triggered = true
	})
	return triggered
}

// Reason is the argument of the first Shutdown call.
func (m *Manager) Reason() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reason
}

// Wait is closed when shutdown begins, so any number of goroutines may select on it.
func (m *Manager) Wait() <-chan struct{} {
	return m.done
}
