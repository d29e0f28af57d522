package worker

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// MockClickHouseConn implements driver.Conn for batch insert tests.
// Unused methods fall through to the nil embedded interface.
type MockClickHouseConn struct {
	driver.Conn

	PrepareBatchFunc func(ctx context.Context, query string) (driver.Batch, error)

	mu      sync.Mutex
	batches []*MockBatch
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.PrepareBatchFunc != nil {
		return m.PrepareBatchFunc(ctx, query)
	}
	b := &MockBatch{}
	m.mu.Lock()
	m.batches = append(m.batches, b)
	m.mu.Unlock()
	return b, nil
}

// SentRows returns every row appended to a batch that was sent.
func (m *MockClickHouseConn) SentRows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]interface{}
	for _, b := range m.batches {
		b.mu.Lock()
		if b.sent {
			out = append(out, b.rows...)
		}
		b.mu.Unlock()
	}
	return out
}

// MockBatch implements driver.Batch
type MockBatch struct {
	driver.Batch

	AppendFunc func(v ...interface{}) error
	SendErr    error

	mu   sync.Mutex
	rows [][]interface{}
	sent bool
}

func (m *MockBatch) IsSent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

func (m *MockBatch) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MockBatch) Append(v ...interface{}) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(v...); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.rows = append(m.rows, v)
	m.mu.Unlock()
	return nil
}

func (m *MockBatch) Send() error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	m.sent = true
	m.mu.Unlock()
	return nil
}

func (m *MockBatch) Flush() error { return nil }

func (m *MockBatch) Abort() error { return nil }

// MockRecords implements RecordApplier
type MockRecords struct {
	ApplyErr error

	mu      sync.Mutex
	applied []models.MatchResult
}

func (m *MockRecords) Apply(ctx context.Context, matches []models.MatchResult) error {
	m.mu.Lock()
	m.applied = append(m.applied, matches...)
	m.mu.Unlock()
	return m.ApplyErr
}

func (m *MockRecords) Applied() []models.MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.MatchResult(nil), m.applied...)
}
