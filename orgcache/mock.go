package orgcache

import (
	"context"
	"sync"
)

// MockConfigServer is an in-memory ConfigServer for verifier-pipeline
// tests. Unlike RPCConfigServer it does not edge-trigger: every
// EnableOrg/DisableOrg call unconditionally records the latest requested
// state, last-write-wins. Verifier tests that assert "final enable state
// per oui" after a sequence of calls want that unconditional record, not
// the RPC-suppression behavior the production server adds on top.
type MockConfigServer struct {
	mu      sync.Mutex
	payers  map[uint64]Payer
	enabled map[uint64]bool
}

func NewMockConfigServer() *MockConfigServer {
	return &MockConfigServer{
		payers:  make(map[uint64]Payer),
		enabled: make(map[uint64]bool),
	}
}

// SetPayer seeds the lookup table the way a test fixture would preload a
// config service's database.
func (m *MockConfigServer) SetPayer(oui uint64, payer Payer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payers[oui] = payer
}

func (m *MockConfigServer) FetchOrg(_ context.Context, oui uint64) (Payer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payers[oui], nil
}

func (m *MockConfigServer) EnableOrg(_ context.Context, oui uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[oui] = true
	return nil
}

func (m *MockConfigServer) DisableOrg(_ context.Context, oui uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[oui] = false
	return nil
}

// IsEnabled reports the last-written enable state for oui, for test
// assertions.
func (m *MockConfigServer) IsEnabled(oui uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled[oui]
}
