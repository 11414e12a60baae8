// Package settings implements a typed key/value settings store.
//
// Each setting is persisted as a raw text value plus a type tag. Values are
// encoded on Set and decoded on every Get; nothing decoded is cached, so the
// raw text and its tag in storage are the only state.
package settings

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/controller/setting"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
)

var operations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "settings_operations_total",
		Help: "Number of settings store operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// Repository is the persistence the store needs. Find reports an absent key
// with setting.ErrSettingNotFound; Upsert writes all fields in one atomic call.
type Repository interface {
	Find(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key string, fields setting.Fields) (*models.Setting, error)
}

// Store is the typed settings store.
type Store struct {
	repo Repository
}

// New creates a Store backed by repo.
func New(repo Repository) *Store {
	return &Store{repo: repo}
}

// Option adjusts optional columns written by Set.
type Option func(*options)

type options struct {
	description *string
	system      *bool
}

// WithDescription sets the description written with the value.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = &description
	}
}

// WithSystem sets the system flag written with the value.
func WithSystem(system bool) Option {
	return func(o *options) {
		o.system = &system
	}
}

// Get returns the decoded value of key, or defaultValue if the key does not exist.
func (s *Store) Get(ctx context.Context, key string, defaultValue any) (any, error) {
	row, err := s.find(ctx, key)
	if errors.Is(err, setting.ErrSettingNotFound) {
		operations.WithLabelValues("get", "default").Inc()
		return defaultValue, nil
	}
	if err != nil {
		operations.WithLabelValues("get", "error").Inc()
		return nil, err
	}

	value, err := Decode(row)
	if err != nil {
		operations.WithLabelValues("get", "decode_error").Inc()
		log.Warn().Err(err).Str("key", key).Str("type", row.ValueType).Msg("stored setting cannot be decoded")

		return nil, err
	}

	operations.WithLabelValues("get", "ok").Inc()

	return value, nil
}

// Set encodes value under vt and upserts it. Nothing is written if encoding fails.
func (s *Store) Set(ctx context.Context, key string, value any, vt ValueType, opts ...Option) (*models.Setting, error) {
	if s == nil || s.repo == nil {
		return nil, ErrRepositoryNil
	}
	if key == "" {
		return nil, ErrKeyEmpty
	}

	raw, err := vt.Encode(value)
	if err == nil {
		// never persist something the read side would reject
		_, err = vt.Decode(raw)
	}
	if err != nil {
		operations.WithLabelValues("set", "encode_error").Inc()
		return nil, &EncodeError{Key: key, Type: vt, Err: err}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	row, err := s.repo.Upsert(ctx, key, setting.Fields{
		RawValue:    raw,
		ValueType:   string(vt),
		Description: o.description,
		IsSystem:    o.system,
	})
	if err != nil {
		operations.WithLabelValues("set", "error").Inc()
		return nil, err
	}

	operations.WithLabelValues("set", "ok").Inc()
	log.Debug().Str("key", key).Str("type", string(vt)).Msg("setting written")

	return row, nil
}

// SetDefault writes the value only when key does not exist yet and returns the stored row.
func (s *Store) SetDefault(
	ctx context.Context, key string, value any, vt ValueType, opts ...Option,
) (*models.Setting, error) {
	row, err := s.find(ctx, key)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, setting.ErrSettingNotFound) {
		return nil, err
	}

	return s.Set(ctx, key, value, vt, opts...)
}

// Decode interprets a stored row under its own tag.
func Decode(row *models.Setting) (any, error) {
	vt := ValueType(row.ValueType)

	value, err := vt.Decode(row.RawValue)
	if err != nil {
		return nil, &DecodeError{Key: row.Key, Type: vt, Raw: row.RawValue, Err: err}
	}

	return value, nil
}

func (s *Store) find(ctx context.Context, key string) (*models.Setting, error) {
	if s == nil || s.repo == nil {
		return nil, ErrRepositoryNil
	}
	if key == "" {
		return nil, ErrKeyEmpty
	}

	return s.repo.Find(ctx, key) //nolint:wrapcheck
}
