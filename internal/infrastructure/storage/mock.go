package storage

import (
	"context"
	"sync"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu          sync.Mutex
	connections map[string]*Connection // keyed by userID + "/" + provider
	products    map[string][]pos.UnifiedProduct
	sales       map[string]float64 // keyed by userID + "/" + date
	nextConnID  int64

	// Hooks for test assertions
	UpsertConnectionCalled bool
	LastUpsertedConnection *Connection
	UpdateTokensCalled     bool
	LastTokenUpdate        struct {
		ID           int64
		AccessToken  string
		RefreshToken string
		ExpiresAt    *time.Time
	}
	StatusUpdates map[int64]ConnectionStatus

	// Error injection for testing error paths
	UpsertConnectionErr error
	InsertProductsErr   error
	UpsertDailySalesErr error
	ListActiveErr       error
}

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		connections:   make(map[string]*Connection),
		products:      make(map[string][]pos.UnifiedProduct),
		sales:         make(map[string]float64),
		StatusUpdates: make(map[int64]ConnectionStatus),
		nextConnID:    1,
	}
}

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock.
func (m *MockRepository) Close() error { return nil }

func connKey(userID, provider string) string { return userID + "/" + provider }

// UpsertConnection saves a connection keyed by (user, provider).
func (m *MockRepository) UpsertConnection(ctx context.Context, conn *Connection) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertConnectionCalled = true
	m.LastUpsertedConnection = conn
	if m.UpsertConnectionErr != nil {
		return 0, m.UpsertConnectionErr
	}

	key := connKey(conn.UserID, conn.Provider)
	if existing, ok := m.connections[key]; ok {
		conn.ID = existing.ID
	} else {
		conn.ID = m.nextConnID
		m.nextConnID++
	}
	copied := *conn
	m.connections[key] = &copied
	return conn.ID, nil
}

// GetConnection retrieves a connection, nil when absent.
func (m *MockRepository) GetConnection(ctx context.Context, userID, provider string) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[connKey(userID, provider)]
	if !ok {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

// ListConnections returns all of a user's connections.
func (m *MockRepository) ListConnections(ctx context.Context, userID string) ([]*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Connection
	for _, conn := range m.connections {
		if conn.UserID == userID {
			copied := *conn
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ListActiveConnections returns connections with status connected, ordered
// by id for deterministic tests.
func (m *MockRepository) ListActiveConnections(ctx context.Context) ([]*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListActiveErr != nil {
		return nil, m.ListActiveErr
	}

	var result []*Connection
	for _, conn := range m.connections {
		if conn.Status == StatusConnected {
			copied := *conn
			result = append(result, &copied)
		}
	}
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].ID < result[i].ID {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

// UpdateConnectionStatus records the status change.
func (m *MockRepository) UpdateConnectionStatus(ctx context.Context, id int64, status ConnectionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StatusUpdates[id] = status
	for _, conn := range m.connections {
		if conn.ID == id {
			conn.Status = status
		}
	}
	return nil
}

// UpdateConnectionTokens overwrites tokens; empty refresh token is kept.
func (m *MockRepository) UpdateConnectionTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateTokensCalled = true
	m.LastTokenUpdate.ID = id
	m.LastTokenUpdate.AccessToken = accessToken
	m.LastTokenUpdate.RefreshToken = refreshToken
	m.LastTokenUpdate.ExpiresAt = expiresAt

	for _, conn := range m.connections {
		if conn.ID == id {
			conn.AccessToken = accessToken
			if refreshToken != "" {
				conn.RefreshToken = refreshToken
			}
			conn.TokenExpiresAt = expiresAt
			conn.Status = StatusConnected
		}
	}
	return nil
}

// TouchLastSync records the sync time.
func (m *MockRepository) TouchLastSync(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, conn := range m.connections {
		if conn.ID == id {
			t := at
			conn.LastSyncAt = &t
		}
	}
	return nil
}

// DeleteConnection removes a connection.
func (m *MockRepository) DeleteConnection(ctx context.Context, userID, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.connections, connKey(userID, provider))
	return nil
}

// InsertProducts appends products under userID+source.
func (m *MockRepository) InsertProducts(ctx context.Context, userID, source string, products []pos.UnifiedProduct) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertProductsErr != nil {
		return 0, m.InsertProductsErr
	}
	key := userID + "/" + source
	m.products[key] = append(m.products[key], products...)
	return len(products), nil
}

// CountProducts returns the number of stored products for userID+source.
func (m *MockRepository) CountProducts(ctx context.Context, userID, source string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.products[userID+"/"+source]), nil
}

// UpsertDailySales overwrites the rollup for (user, date).
func (m *MockRepository) UpsertDailySales(ctx context.Context, userID string, date string, total float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpsertDailySalesErr != nil {
		return m.UpsertDailySalesErr
	}
	m.sales[userID+"/"+date] = total
	return nil
}

// GetDailySales returns the rollup for (user, date).
func (m *MockRepository) GetDailySales(ctx context.Context, userID string, date string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total, ok := m.sales[userID+"/"+date]
	return total, ok, nil
}

// RollupCount reports how many rollup rows exist, for idempotency checks.
func (m *MockRepository) RollupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sales)
}
