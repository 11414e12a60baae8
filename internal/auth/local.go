package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
	"github.com/PagodaAdmin/PagodaAdmin/internal/uniuri"
)

const whereUsername = "username = ?"

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate checks username and password against the users table.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	user, err := p.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// CreateUser creates a new active user.
func (p *LocalProvider) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereUsername, username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if count > 0 {
		return nil, ErrUserNameExists
	}

	hashedPassword, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Active:   true,
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}

	if err = p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// AdminSeed reports what EnsureAdmin did.
type AdminSeed struct {
	Created  bool
	Username string
	// Password is set only when it was generated.
	Password string
}

// EnsureAdmin creates the configured administrator when the users table is empty.
// Without a configured password one is generated and returned to the caller.
func (p *LocalProvider) EnsureAdmin(ctx context.Context, admin config.Admin) (AdminSeed, error) {
	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return AdminSeed{}, fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		return AdminSeed{}, nil
	}

	seed := AdminSeed{Username: admin.Username}
	if seed.Username == "" {
		seed.Username = "admin"
	}

	password := admin.Password
	if password == "" {
		var err error

		if password, err = uniuri.New(); err != nil {
			return AdminSeed{}, fmt.Errorf("failed to generate admin password: %w", err)
		}

		seed.Password = password
	}

	if _, err := p.CreateUser(ctx, seed.Username, admin.Email, password); err != nil {
		return AdminSeed{}, err
	}

	seed.Created = true
	log.Info().Str("username", seed.Username).Bool("generated_password", seed.Password != "").
		Msg("created admin user")

	return seed, nil
}

// ChangePassword replaces the password hash of username.
func (p *LocalProvider) ChangePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyCredentials
	}

	hashedPassword, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	res := p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereUsername, username).
		Update("password", hashedPassword)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetUserByUsername retrieves a user by username.
func (p *LocalProvider) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where(whereUsername, username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}
