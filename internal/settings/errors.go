package settings

import (
	"errors"
	"fmt"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/controller/setting"
)

var (
	// ErrKeyEmpty is returned when a setting key is empty.
	ErrKeyEmpty = setting.ErrSettingKeyEmpty
	// ErrRepositoryNil is returned when the store has no repository.
	ErrRepositoryNil = errors.New("settings repository is nil")
	// ErrTypeMismatch is returned by the typed getters when the stored tag does not match the requested Go type.
	ErrTypeMismatch = errors.New("setting type mismatch")
)

// DecodeError reports a stored raw value that cannot be interpreted under its tag.
type DecodeError struct {
	Key  string
	Type ValueType
	Raw  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("setting %q: cannot decode %q as %s: %v", e.Key, e.Raw, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a value that cannot be written under the requested tag.
// Nothing is persisted when it is returned.
type EncodeError struct {
	Key  string
	Type ValueType
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("setting %q: cannot encode value as %s: %v", e.Key, e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
