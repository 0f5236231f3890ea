package store

import (
	"context" // Context for query scoping
	"errors"  // Error inspection
	"strings" // Duplicate-key detection

	"asset_tracker/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// GormStore implements Store on top of a GORM connection
type GormStore struct {
	db *gorm.DB // Underlying database handle
}

// NewGormStore wraps an open GORM connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateUser persists a new user; a duplicate email surfaces as ErrDuplicateEmail
func (s *GormStore) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// MySQL reports unique violations as error 1062
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UserByEmail fetches a user by login email
func (s *GormStore) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// UserByID fetches a user by primary key
func (s *GormStore) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// UpdateUser saves the full user row
func (s *GormStore) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// AssetsByUser returns the owner's assets, newest first
func (s *GormStore) AssetsByUser(ctx context.Context, userID uint) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&assets).Error
	return assets, err
}

// CryptoAssetsByUser returns the owner's priceable crypto assets (symbol set)
func (s *GormStore) CryptoAssetsByUser(ctx context.Context, userID uint) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND symbol <> ''", userID, domain.AssetTypeCrypto).
		Order("created_at desc").
		Find(&assets).Error
	return assets, err
}

// AssetByID fetches one asset scoped by owner; foreign rows read as not found
func (s *GormStore) AssetByID(ctx context.Context, id, userID uint) (*domain.Asset, error) {
	var asset domain.Asset
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&asset).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &asset, nil
}

// CreateAsset persists a new asset row
func (s *GormStore) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	return s.db.WithContext(ctx).Create(asset).Error
}

// UpdateAsset saves the full asset row
func (s *GormStore) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	return s.db.WithContext(ctx).Save(asset).Error
}

// DeleteAsset removes one asset scoped by owner
func (s *GormStore) DeleteAsset(ctx context.Context, id, userID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CashBalance sums the owner's CASH rows (debits are negative rows)
func (s *GormStore) CashBalance(ctx context.Context, userID uint) (float64, error) {
	var balance float64
	err := s.db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("user_id = ? AND type = ?", userID, domain.AssetTypeCash).
		Select("COALESCE(SUM(value), 0)").
		Scan(&balance).Error
	return balance, err
}

// BuyWithWallet inserts the purchased asset and the CASH debit in one
// transaction. The balance is re-checked inside the transaction so a
// concurrent debit cannot oversell the wallet.
func (s *GormStore) BuyWithWallet(ctx context.Context, asset, debit *domain.Asset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balance float64
		// Sum available cash
		if err := tx.Model(&domain.Asset{}).
			Where("user_id = ? AND type = ?", asset.UserID, domain.AssetTypeCash).
			Select("COALESCE(SUM(value), 0)").
			Scan(&balance).Error; err != nil {
			return err
		}
		// Reject if the wallet cannot cover the purchase
		if balance < asset.Value {
			return ErrInsufficientFunds
		}
		// Purchased asset row
		if err := tx.Create(asset).Error; err != nil {
			return err // Return error to rollback
		}
		// Matching CASH debit row
		if err := tx.Create(debit).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
}

// ExpensesByUser returns the owner's expenses, newest first by expense date
func (s *GormStore) ExpensesByUser(ctx context.Context, userID uint) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc").
		Find(&expenses).Error
	return expenses, err
}

// ExpenseByID fetches one expense scoped by owner
func (s *GormStore) ExpenseByID(ctx context.Context, id, userID uint) (*domain.Expense, error) {
	var expense domain.Expense
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&expense).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &expense, nil
}

// CreateExpense persists a new expense row
func (s *GormStore) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	return s.db.WithContext(ctx).Create(expense).Error
}

// UpdateExpense saves the full expense row
func (s *GormStore) UpdateExpense(ctx context.Context, expense *domain.Expense) error {
	return s.db.WithContext(ctx).Save(expense).Error
}

// DeleteExpense removes one expense scoped by owner
func (s *GormStore) DeleteExpense(ctx context.Context, id, userID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapNotFound folds GORM's record-not-found into the package sentinel
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
