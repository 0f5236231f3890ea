package domain

import "time"

// Expense Model
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`    // Primary key
	UserID    uint      `gorm:"index;not null" json:"userId"` // Owning user
	Title     string    `gorm:"not null" json:"title"`   // What the money went to
	Amount    float64   `json:"amount"`                  // Amount spent
	Category  string    `json:"category"`                // Free-text category
	Date      time.Time `json:"date"`                    // When the expense occurred
	CreatedAt time.Time `json:"createdAt"`               // Timestamp of creation
}
