package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

// MockUserRepository is an in-memory repository.UserRepository. It enforces
// email uniqueness the way the users table does and cascades deletes into
// Products when set.
type MockUserRepository struct {
	mu       sync.Mutex
	users    map[string]model.User
	Products *MockProductRepository

	CreateErr error
	FindErr   error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]model.User)}
}

// Seed stores users as-is, bypassing the uniqueness check.
func (m *MockUserRepository) Seed(users ...model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		m.users[u.ID] = u
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email %q is already in use: %w", user.Email, common.ErrConflict)
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = *user
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	return &u, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, common.ErrNotFound)
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Email == user.Email {
			return fmt.Errorf("email %q is already in use: %w", user.Email, common.ErrConflict)
		}
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	if m.DeleteErr != nil {
		m.mu.Unlock()
		return m.DeleteErr
	}
	if _, ok := m.users[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	delete(m.users, id)
	m.mu.Unlock()

	if m.Products != nil {
		m.Products.deleteByCustomer(id)
	}
	return nil
}

// MockProductRepository is an in-memory repository.ProductRepository. With
// Users set it checks the owner exists, like the customer_id foreign key,
// and embeds the owner on reads.
type MockProductRepository struct {
	mu       sync.Mutex
	products map[string]model.Product
	Users    *MockUserRepository

	CreateErr error
	FindErr   error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[string]model.Product)}
}

// Seed stores products as-is, bypassing constraint checks.
func (m *MockProductRepository) Seed(products ...model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		m.products[p.ID] = p
	}
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	if m.Users != nil {
		if _, err := m.Users.FindByID(ctx, p.CustomerID); err != nil {
			return fmt.Errorf("customer %s: %w", p.CustomerID, common.ErrNotFound)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.products {
		if existing.Code == p.Code {
			return fmt.Errorf("product with id_product %q already exists: %w", p.Code, common.ErrConflict)
		}
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	stored.Customer = nil
	m.products[p.ID] = stored
	return nil
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	if m.FindErr != nil {
		m.mu.Unlock()
		return nil, m.FindErr
	}
	p, ok := m.products[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, common.ErrNotFound)
	}
	return m.withCustomer(ctx, p), nil
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	m.mu.Lock()
	if m.FindErr != nil {
		m.mu.Unlock()
		return nil, m.FindErr
	}
	var found *model.Product
	for _, p := range m.products {
		if p.Code == code {
			p := p
			found = &p
			break
		}
	}
	m.mu.Unlock()
	if found == nil {
		return nil, fmt.Errorf("product %q: %w", code, common.ErrNotFound)
	}
	return m.withCustomer(ctx, *found), nil
}

func (m *MockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	return m.list(ctx, func(model.Product) bool { return true })
}

func (m *MockProductRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.Product, error) {
	return m.list(ctx, func(p model.Product) bool { return p.CustomerID == customerID })
}

func (m *MockProductRepository) list(ctx context.Context, keep func(model.Product) bool) ([]model.Product, error) {
	m.mu.Lock()
	if m.ListErr != nil {
		m.mu.Unlock()
		return nil, m.ListErr
	}
	var matched []model.Product
	for _, p := range m.products {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	products := make([]model.Product, 0, len(matched))
	for _, p := range matched {
		products = append(products, *m.withCustomer(ctx, p))
	}
	return products, nil
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	stored, ok := m.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID, common.ErrNotFound)
	}
	for id, existing := range m.products {
		if id != p.ID && existing.Code == p.Code {
			return fmt.Errorf("product with id_product %q already exists: %w", p.Code, common.ErrConflict)
		}
	}
	stored.Code = p.Code
	stored.UpdatedAt = time.Now()
	p.UpdatedAt = stored.UpdatedAt
	m.products[p.ID] = stored
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("product %s not found for deletion: %w", id, common.ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

// Len returns the number of stored products.
func (m *MockProductRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

func (m *MockProductRepository) deleteByCustomer(customerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.products {
		if p.CustomerID == customerID {
			delete(m.products, id)
		}
	}
}

func (m *MockProductRepository) withCustomer(ctx context.Context, p model.Product) *model.Product {
	if m.Users != nil {
		if u, err := m.Users.FindByID(ctx, p.CustomerID); err == nil {
			p.Customer = u.Sanitized()
		}
	}
	return &p
}

// MockSensorReadingRepository serves readings from memory, newest first.
type MockSensorReadingRepository struct {
	mu       sync.Mutex
	readings map[string][]model.SensorReading
	Calls    int

	Err error
}

func NewMockSensorReadingRepository() *MockSensorReadingRepository {
	return &MockSensorReadingRepository{readings: make(map[string][]model.SensorReading)}
}

func (m *MockSensorReadingRepository) Add(readings ...model.SensorReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range readings {
		m.readings[r.ProductID] = append(m.readings[r.ProductID], r)
	}
	for id := range m.readings {
		rs := m.readings[id]
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Timestamp.After(rs[j].Timestamp) })
	}
}

func (m *MockSensorReadingRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]model.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	rs := m.readings[productID]
	if limit < len(rs) {
		rs = rs[:limit]
	}
	out := make([]model.SensorReading, len(rs))
	copy(out, rs)
	return out, nil
}

func (m *MockSensorReadingRepository) LatestByProduct(ctx context.Context, productID string) (*model.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	rs := m.readings[productID]
	if len(rs) == 0 {
		return nil, nil
	}
	r := rs[0]
	return &r, nil
}
