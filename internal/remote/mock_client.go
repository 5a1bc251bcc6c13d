package remote

import (
	"context"
	"fmt"

	"github.com/kaurvahtra/listq/internal/models"
)

// MockClient is an in-memory Client implementation for testing.
type MockClient struct {
	// Items stores items by ID.
	Items map[string]*models.Item
	// Calls records every mutating call as "method:id" in invocation order.
	Calls []string
	// Err, when set, is returned by every method.
	Err error
	// FailCreate/FailUpdate/FailDelete inject per-method failures.
	FailCreate error
	FailUpdate error
	FailDelete error
}

// NewMockClient creates a new MockClient for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		Items: make(map[string]*models.Item),
	}
}

// AddItem seeds the mock store.
func (m *MockClient) AddItem(item *models.Item) {
	m.Items[item.ID] = item
}

// CreateItem stores a new item.
func (m *MockClient) CreateItem(ctx context.Context, item *models.Item) error {
	m.Calls = append(m.Calls, "create:"+item.ID)
	if m.Err != nil {
		return m.Err
	}
	if m.FailCreate != nil {
		return m.FailCreate
	}
	if _, exists := m.Items[item.ID]; exists {
		return fmt.Errorf("item %s already exists", item.ID)
	}
	m.Items[item.ID] = item.Clone()
	return nil
}

// UpdateItem applies a patch to a stored item.
func (m *MockClient) UpdateItem(ctx context.Context, id string, patch *models.ItemPatch) (*models.Item, error) {
	m.Calls = append(m.Calls, "update:"+id)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.FailUpdate != nil {
		return nil, m.FailUpdate
	}
	item, ok := m.Items[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := patch.Apply(item)
	m.Items[id] = updated
	return updated.Clone(), nil
}

// DeleteItem removes an item. Unknown ids are tolerated.
func (m *MockClient) DeleteItem(ctx context.Context, id string) error {
	m.Calls = append(m.Calls, "delete:"+id)
	if m.Err != nil {
		return m.Err
	}
	if m.FailDelete != nil {
		return m.FailDelete
	}
	delete(m.Items, id)
	return nil
}

// GetItem returns the stored item or ErrNotFound.
func (m *MockClient) GetItem(ctx context.Context, id string) (*models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	item, ok := m.Items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

// ListItems returns every stored item.
func (m *MockClient) ListItems(ctx context.Context) ([]*models.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	items := make([]*models.Item, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, item.Clone())
	}
	return items, nil
}
