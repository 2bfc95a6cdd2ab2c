package sheets

import (
	"context"
	"sync"
)

// MockPublisher is a Publisher that records reports for tests.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, report Report) (string, error)
	Reports     []Report
	mu          sync.Mutex
}

// NewMockPublisher creates a mock publisher that returns spreadsheetID.
func NewMockPublisher(spreadsheetID string) *MockPublisher {
	return &MockPublisher{
		PublishFunc: func(context.Context, Report) (string, error) {
			return spreadsheetID, nil
		},
	}
}

// Publish records report and delegates to PublishFunc.
func (m *MockPublisher) Publish(ctx context.Context, report Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.PublishFunc == nil {
		return "", nil
	}
	return m.PublishFunc(ctx, report)
}

// Calls returns a copy of the recorded reports.
func (m *MockPublisher) Calls() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]Report, len(m.Reports))
	copy(calls, m.Reports)
	return calls
}
