package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`                                                   // Primary key (UUID)
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`                                   // Unique username
	Password  string    `gorm:"not null" json:"-"`                                                              // Hashed password
	Role      string    `gorm:"size:16;default:user" json:"role"`                                               // Role: user or admin
	Wallet    Wallet    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"wallet"` // One-to-one relationship with Wallet
	CreatedAt time.Time `json:"created_at"`                                                                     // Registration time
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
