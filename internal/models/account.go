package models

import (
	"time"
)

// Account is a user that may sign in. Directory accounts authenticate
// against Active Directory; the local admin authenticates with PasswordHash.
type Account struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"column:password;size:255"` // Empty for directory accounts
	FullName     string `gorm:"column:fullname;size:255"`
	Title        string `gorm:"size:255"`
	Email        string `gorm:"size:255"`
	IsDomainUser bool   `gorm:"not null;default:false"`
	IsSuperAdmin bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "account"
}

// Identity returns the token-safe view of the account with the given role ids.
// The password hash is never copied.
func (a *Account) Identity(roleIDs []int64) *Identity {
	if roleIDs == nil {
		roleIDs = []int64{}
	}
	return &Identity{
		ID:       a.ID,
		Username: a.Username,
		FullName: a.FullName,
		Title:    a.Title,
		Email:    a.Email,
		Roles:    roleIDs,
	}
}

// Role is a named permission group.
type Role struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Name          string `gorm:"uniqueIndex;size:100;not null"`
	Description   string `gorm:"size:500"`
	ArName        string `gorm:"size:100"`
	ArDescription string `gorm:"size:500"`
	IsActive      bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (Role) TableName() string {
	return "role"
}

// AccountRole binds an account to a role.
type AccountRole struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	AccountID int64 `gorm:"uniqueIndex:idx_account_role;not null"`
	RoleID    int64 `gorm:"uniqueIndex:idx_account_role;not null"`

	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (AccountRole) TableName() string {
	return "account_role"
}
