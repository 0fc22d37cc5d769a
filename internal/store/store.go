package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/adelabdelgawad/auth-base/internal/auth"
	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AdministratorRole is the role granted to the seeded local admin.
const AdministratorRole = "Administrator"

type Store struct {
	db     *gorm.DB
	config *config.Config
}

func New(ctx context.Context, driver, dsn string, cfg *config.Config) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if driver == config.DatabaseDriverSQLite {
		// A single connection keeps :memory: databases shared and serializes writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Account{},
		&models.Role{},
		&models.AccountRole{},
		&models.AuthEvent{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db, config: cfg}

	// Seed default data
	if err := store.seedData(ctx); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return store, nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64 URL encoding to get a safe, printable password
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// seedData creates the local admin account and the Administrator role when missing.
func (s *Store) seedData(ctx context.Context) error {
	username := "admin"
	if s.config != nil && s.config.LocalAdminUsername != "" {
		username = s.config.LocalAdminUsername
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.Account
		err := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			password := ""
			if s.config != nil {
				password = s.config.DefaultAdminPassword
			}
			generated := password == ""
			if generated {
				if password, err = generateRandomPassword(16); err != nil {
					return err
				}
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			admin = models.Account{
				Username:     username,
				PasswordHash: hash,
				FullName:     "Administrator",
				IsSuperAdmin: true,
				IsActive:     true,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			if generated {
				log.Printf("Created local admin: %s / %s", username, password)
			} else {
				log.Printf("Created local admin: %s", username)
			}
		case err != nil:
			return err
		}

		role := models.Role{
			Name:        AdministratorRole,
			Description: "Full access to every resource",
			IsActive:    true,
		}
		if err := tx.Where("name = ?", AdministratorRole).FirstOrCreate(&role).Error; err != nil {
			return err
		}

		link := models.AccountRole{AccountID: admin.ID, RoleID: role.ID}
		return tx.Where("account_id = ? AND role_id = ?", admin.ID, role.ID).
			FirstOrCreate(&link).Error
	})
}

// Account operations
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &account, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &account, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.db.WithContext(ctx).Create(account).Error
}

// SetAccountActive enables or disables sign-in for an account.
func (s *Store) SetAccountActive(ctx context.Context, id int64, active bool) error {
	return s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// UpdateAccountProfile overwrites the directory-sourced profile fields.
func (s *Store) UpdateAccountProfile(
	ctx context.Context,
	id int64,
	fullName, title, email string,
) error {
	return s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"fullname": fullName,
			"title":    title,
			"email":    email,
		}).Error
}

// Role operations
func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	return s.db.WithContext(ctx).Create(role).Error
}

func (s *Store) AssignRole(ctx context.Context, accountID, roleID int64) error {
	link := models.AccountRole{AccountID: accountID, RoleID: roleID}
	return s.db.WithContext(ctx).
		Where("account_id = ? AND role_id = ?", accountID, roleID).
		FirstOrCreate(&link).Error
}

// GetAccountRoleIDs returns the ids of the active roles bound to an account, ascending.
func (s *Store) GetAccountRoleIDs(ctx context.Context, accountID int64) ([]int64, error) {
	ids := []int64{}
	err := s.db.WithContext(ctx).
		Model(&models.AccountRole{}).
		Joins("JOIN role ON role.id = account_role.role_id").
		Where("account_role.account_id = ? AND role.is_active = ?", accountID, true).
		Order("account_role.role_id").
		Pluck("account_role.role_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Auth event operations
func (s *Store) CreateAuthEventBatch(events []*models.AuthEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.CreateInBatches(events, 100).Error
}

func (s *Store) CountAuthEvents(ctx context.Context, eventType models.EventType) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AuthEvent{}).
		Where("event_type = ?", eventType).
		Count(&count).Error
	return count, err
}

func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrRecordNotFound, err)
	}
	return err
}
