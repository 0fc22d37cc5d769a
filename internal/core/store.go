package core

import (
	"context"

	"github.com/adelabdelgawad/auth-base/internal/models"
)

// AccountStore is the persistence surface the login and refresh flows need.
// Lookups return store.ErrRecordNotFound when no account matches.
type AccountStore interface {
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountRoleIDs(ctx context.Context, accountID int64) ([]int64, error)
	UpdateAccountProfile(ctx context.Context, id int64, fullName, title, email string) error
}
