package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`       // Primary key
	Email     string    `gorm:"unique;not null" json:"email"` // Unique login email
	Password  string    `gorm:"not null" json:"-"`          // Bcrypt hash, never serialized
	Name      string    `json:"name"`                       // Display name
	Role      string    `gorm:"default:user" json:"role"`   // Role: user or admin
	CreatedAt time.Time `json:"createdAt"`                  // Timestamp of creation
}

// Public returns the user projection safe to hand back to clients
func (u User) Public() map[string]any {
	return map[string]any{
		"id":    u.ID,    // User ID
		"email": u.Email, // Login email
		"name":  u.Name,  // Display name
		"role":  u.Role,  // Role
	}
}
