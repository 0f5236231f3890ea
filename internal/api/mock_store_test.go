package api

import (
	"context"
	"sort"
	"strings"

	"asset_tracker/internal/domain"
	"asset_tracker/internal/store"
)

// mockStore is an in-memory store.Store used by the handler tests
type mockStore struct {
	users        map[uint]*domain.User
	usersByEmail map[string]*domain.User
	assets       map[uint]*domain.Asset
	expenses     map[uint]*domain.Expense
	nextUserID   uint
	nextAssetID  uint
	nextExpID    uint
	seq          int // creation order tiebreaker for identical timestamps
	assetSeq     map[uint]int
	expenseSeq   map[uint]int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:        make(map[uint]*domain.User),
		usersByEmail: make(map[string]*domain.User),
		assets:       make(map[uint]*domain.Asset),
		expenses:     make(map[uint]*domain.Expense),
		assetSeq:     make(map[uint]int),
		expenseSeq:   make(map[uint]int),
	}
}

func (m *mockStore) CreateUser(_ context.Context, user *domain.User) error {
	if _, exists := m.usersByEmail[strings.ToLower(user.Email)]; exists {
		return store.ErrDuplicateEmail
	}
	m.nextUserID++
	user.ID = m.nextUserID
	cp := *user
	m.users[user.ID] = &cp
	m.usersByEmail[strings.ToLower(user.Email)] = &cp
	return nil
}

func (m *mockStore) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.usersByEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UserByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateUser(_ context.Context, user *domain.User) error {
	old, ok := m.users[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	if other, exists := m.usersByEmail[strings.ToLower(user.Email)]; exists && other.ID != user.ID {
		return store.ErrDuplicateEmail
	}
	delete(m.usersByEmail, strings.ToLower(old.Email))
	cp := *user
	m.users[user.ID] = &cp
	m.usersByEmail[strings.ToLower(user.Email)] = &cp
	return nil
}

func (m *mockStore) AssetsByUser(_ context.Context, userID uint) ([]domain.Asset, error) {
	var out []domain.Asset
	for _, a := range m.assets {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	// Newest first, mirroring ORDER BY created_at DESC
	sort.Slice(out, func(i, j int) bool {
		return m.assetSeq[out[i].ID] > m.assetSeq[out[j].ID]
	})
	return out, nil
}

func (m *mockStore) CryptoAssetsByUser(ctx context.Context, userID uint) ([]domain.Asset, error) {
	all, _ := m.AssetsByUser(ctx, userID)
	var out []domain.Asset
	for _, a := range all {
		if a.Type == domain.AssetTypeCrypto && a.Symbol != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) AssetByID(_ context.Context, id, userID uint) (*domain.Asset, error) {
	if a, ok := m.assets[id]; ok && a.UserID == userID {
		cp := *a
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) CreateAsset(_ context.Context, asset *domain.Asset) error {
	m.nextAssetID++
	asset.ID = m.nextAssetID
	m.seq++
	m.assetSeq[asset.ID] = m.seq
	cp := *asset
	m.assets[asset.ID] = &cp
	return nil
}

func (m *mockStore) UpdateAsset(_ context.Context, asset *domain.Asset) error {
	if _, ok := m.assets[asset.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *asset
	m.assets[asset.ID] = &cp
	return nil
}

func (m *mockStore) DeleteAsset(_ context.Context, id, userID uint) error {
	if a, ok := m.assets[id]; ok && a.UserID == userID {
		delete(m.assets, id)
		return nil
	}
	return store.ErrNotFound
}

func (m *mockStore) CashBalance(_ context.Context, userID uint) (float64, error) {
	var sum float64
	for _, a := range m.assets {
		if a.UserID == userID && a.Type == domain.AssetTypeCash {
			sum += a.Value
		}
	}
	return sum, nil
}

func (m *mockStore) BuyWithWallet(ctx context.Context, asset, debit *domain.Asset) error {
	balance, _ := m.CashBalance(ctx, asset.UserID)
	if balance < asset.Value {
		return store.ErrInsufficientFunds
	}
	_ = m.CreateAsset(ctx, asset)
	_ = m.CreateAsset(ctx, debit)
	return nil
}

func (m *mockStore) ExpensesByUser(_ context.Context, userID uint) ([]domain.Expense, error) {
	var out []domain.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return m.expenseSeq[out[i].ID] > m.expenseSeq[out[j].ID]
	})
	return out, nil
}

func (m *mockStore) ExpenseByID(_ context.Context, id, userID uint) (*domain.Expense, error) {
	if e, ok := m.expenses[id]; ok && e.UserID == userID {
		cp := *e
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) CreateExpense(_ context.Context, expense *domain.Expense) error {
	m.nextExpID++
	expense.ID = m.nextExpID
	m.seq++
	m.expenseSeq[expense.ID] = m.seq
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *mockStore) UpdateExpense(_ context.Context, expense *domain.Expense) error {
	if _, ok := m.expenses[expense.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *mockStore) DeleteExpense(_ context.Context, id, userID uint) error {
	if e, ok := m.expenses[id]; ok && e.UserID == userID {
		delete(m.expenses, id)
		return nil
	}
	return store.ErrNotFound
}

var _ store.Store = (*mockStore)(nil)
