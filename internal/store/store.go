package store

import (
	"context" // Context threaded through every query
	"errors"  // Sentinel errors

	"asset_tracker/internal/domain" // Importing domain models
)

// Sentinel errors mapped to HTTP statuses at the handler boundary
var (
	ErrNotFound          = errors.New("record not found")           // Row absent or not owned by caller
	ErrDuplicateEmail    = errors.New("email already registered")   // Signup conflict
	ErrInsufficientFunds = errors.New("insufficient wallet funds")  // Wallet-funded buy rejected
)

// Store is the persistence interface the handlers depend on.
// Every owner-scoped method takes the authenticated user's id; rows belonging
// to another user behave exactly like missing rows.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UserByID(ctx context.Context, id uint) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Assets
	AssetsByUser(ctx context.Context, userID uint) ([]domain.Asset, error)
	CryptoAssetsByUser(ctx context.Context, userID uint) ([]domain.Asset, error)
	AssetByID(ctx context.Context, id, userID uint) (*domain.Asset, error)
	CreateAsset(ctx context.Context, asset *domain.Asset) error
	UpdateAsset(ctx context.Context, asset *domain.Asset) error
	DeleteAsset(ctx context.Context, id, userID uint) error
	CashBalance(ctx context.Context, userID uint) (float64, error)
	// BuyWithWallet atomically inserts the purchased asset and its CASH debit
	// row. The balance check runs inside the same transaction; on
	// ErrInsufficientFunds no row is written.
	BuyWithWallet(ctx context.Context, asset, debit *domain.Asset) error

	// Expenses
	ExpensesByUser(ctx context.Context, userID uint) ([]domain.Expense, error)
	ExpenseByID(ctx context.Context, id, userID uint) (*domain.Expense, error)
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	UpdateExpense(ctx context.Context, expense *domain.Expense) error
	DeleteExpense(ctx context.Context, id, userID uint) error
}
