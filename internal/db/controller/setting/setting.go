// Package setting provides the database access layer for typed settings.
package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
)

const (
	keyQueryPattern = "setting_key = ?"
	keyColumn       = "setting_key"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when a setting key is empty.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrSettingIsSystem is returned when deleting a setting flagged as system.
	ErrSettingIsSystem = errors.New("setting is a system setting and cannot be deleted")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Fields holds the columns written by Upsert. RawValue and ValueType are always
// written together; Description and IsSystem are only written when non-nil.
type Fields struct {
	RawValue    string
	ValueType   string
	Description *string
	IsSystem    *bool
}

// Repository reads and writes settings through gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find retrieves a setting by its key.
func (r *Repository) Find(ctx context.Context, key string) (*models.Setting, error) {
	if r == nil || r.db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var setting models.Setting
	result := r.db.WithContext(ctx).Where(keyQueryPattern, key).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting %q: %w", key, result.Error)
	}

	return &setting, nil
}

// List retrieves all settings ordered by key.
func (r *Repository) List(ctx context.Context) ([]models.Setting, error) {
	if r == nil || r.db == nil {
		return nil, ErrDBNil
	}

	settings := []models.Setting{}
	result := r.db.WithContext(ctx).Order(keyColumn + " ASC").Find(&settings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list settings: %w", result.Error)
	}

	return settings, nil
}

// Upsert creates the setting or replaces its fields in a single statement,
// then returns the stored row.
func (r *Repository) Upsert(ctx context.Context, key string, fields Fields) (*models.Setting, error) {
	if r == nil || r.db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	row := models.Setting{
		Key:       key,
		RawValue:  fields.RawValue,
		ValueType: fields.ValueType,
	}

	columns := []string{"raw_value", "value_type", "updated_at"}
	if fields.Description != nil {
		row.Description = *fields.Description
		columns = append(columns, "description")
	}
	if fields.IsSystem != nil {
		row.IsSystem = *fields.IsSystem
		columns = append(columns, "is_system")
	}

	var stored models.Setting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: keyColumn}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		return tx.Where(keyQueryPattern, key).First(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}

	return &stored, nil
}

// Delete deletes a setting by key. System settings are refused.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.delete(ctx, key, false)
}

// ForceDelete deletes a setting by key even if it is flagged as system.
func (r *Repository) ForceDelete(ctx context.Context, key string) error {
	return r.delete(ctx, key, true)
}

func (r *Repository) delete(ctx context.Context, key string, allowSystem bool) error {
	if r == nil || r.db == nil {
		return ErrDBNil
	}
	if key == "" {
		return ErrSettingKeyEmpty
	}

	query := r.db.WithContext(ctx).Where(keyQueryPattern, key)
	if !allowSystem {
		existing, err := r.Find(ctx, key)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return ErrSettingIsSystem
		}
		// guard against the flag being set between the read and the delete
		query = query.Where("is_system = ?", false)
	}

	result := query.Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
