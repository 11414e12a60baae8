// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting represents a typed configuration entry stored in the database.
// RawValue is the authoritative form; ValueType tells readers how to decode it.
type Setting struct {
	// ID is the numeric primary key.
	ID uint64 `gorm:"primaryKey"`
	// UID is a stable public identifier assigned on creation.
	UID string `gorm:"column:uid;type:varchar(36);not null;uniqueIndex"`
	// Key identifies the setting and never changes after creation.
	Key string `gorm:"column:setting_key;type:varchar(191);not null;uniqueIndex"`
	// RawValue is the persisted textual representation of the value.
	RawValue string `gorm:"column:raw_value;type:text;not null"`
	// ValueType is the declared type tag (string, integer, boolean or json).
	ValueType string `gorm:"column:value_type;type:varchar(20);not null;default:'string'"`
	// Description is informational only.
	Description string `gorm:"column:description;type:varchar(500)"`
	// IsSystem marks settings that must not be deleted by ordinary callers.
	IsSystem bool `gorm:"column:is_system;not null;default:false"`
	// CreatedAt is the timestamp when the setting was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the setting was last written (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}

// BeforeCreate assigns a UID to new rows.
func (s *Setting) BeforeCreate(_ *gorm.DB) error {
	if s.UID == "" {
		s.UID = uuid.NewString()
	}

	return nil
}
