package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/controller/setting"
)

// GetString returns a string-tagged setting or def when absent.
func (s *Store) GetString(ctx context.Context, key, def string) (string, error) {
	return getAs(ctx, s, key, def)
}

// GetInt returns an integer-tagged setting or def when absent.
func (s *Store) GetInt(ctx context.Context, key string, def int) (int, error) {
	return getAs(ctx, s, key, def)
}

// GetBool returns a boolean-tagged setting or def when absent.
func (s *Store) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	return getAs(ctx, s, key, def)
}

// GetJSON unmarshals a json-tagged setting into target. It reports false
// and leaves target untouched when the key does not exist.
func (s *Store) GetJSON(ctx context.Context, key string, target any) (bool, error) {
	row, err := s.find(ctx, key)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if ValueType(row.ValueType) != TypeJSON {
		return true, fmt.Errorf("%w: %q is %s, not %s", ErrTypeMismatch, key, row.ValueType, TypeJSON)
	}

	if err = json.Unmarshal([]byte(row.RawValue), target); err != nil {
		return true, &DecodeError{Key: key, Type: TypeJSON, Raw: row.RawValue, Err: err}
	}

	return true, nil
}

func getAs[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	var zero T

	value, err := s.Get(ctx, key, def)
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T, not %T", ErrTypeMismatch, key, value, zero)
	}

	return typed, nil
}
