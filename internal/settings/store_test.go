package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/controller/setting"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/dbtest"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
)

func newTestStore(t *testing.T, seed ...models.Setting) (*Store, *setting.Repository) {
	t.Helper()

	db := dbtest.Open(t)
	dbtest.Seed(t, db, seed...)
	repo := setting.NewRepository(db)

	return New(repo), repo
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		key       string
		value     any
		valueType ValueType
		def       any
		expected  any
		raw       string
	}{
		{
			name:      "integer",
			key:       "max_bookings_per_slot",
			value:     5,
			valueType: TypeInteger,
			def:       0,
			expected:  5,
			raw:       "5",
		},
		{
			name:      "negative int64",
			key:       "offset_minutes",
			value:     int64(-90),
			valueType: TypeInteger,
			def:       0,
			expected:  -90,
			raw:       "-90",
		},
		{
			name:      "boolean",
			key:       "enable_waitlist",
			value:     true,
			valueType: TypeBoolean,
			def:       false,
			expected:  true,
			raw:       "true",
		},
		{
			name:      "boolean token is canonicalised",
			key:       "enable_waitlist",
			value:     "OFF",
			valueType: TypeBoolean,
			def:       true,
			expected:  false,
			raw:       "false",
		},
		{
			name:      "json list",
			key:       "notify_emails",
			value:     []string{"a@x.com", "b@x.com"},
			valueType: TypeJSON,
			def:       []any{},
			expected:  []any{"a@x.com", "b@x.com"},
			raw:       `["a@x.com","b@x.com"]`,
		},
		{
			name:      "json object",
			key:       "opening_hours",
			value:     map[string]any{"open": "06:00", "close": "21:00"},
			valueType: TypeJSON,
			def:       nil,
			expected:  map[string]any{"open": "06:00", "close": "21:00"},
			raw:       `{"close":"21:00","open":"06:00"}`,
		},
		{
			name:      "string",
			key:       "site_name",
			value:     "Chua Bao Quang",
			valueType: TypeString,
			def:       "",
			expected:  "Chua Bao Quang",
			raw:       "Chua Bao Quang",
		},
		{
			name:      "empty string",
			key:       "footer_note",
			value:     "",
			valueType: TypeString,
			def:       "unset",
			expected:  "",
			raw:       "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := newTestStore(t)

			row, err := store.Set(ctx, tc.key, tc.value, tc.valueType)
			require.NoError(t, err)
			assert.Equal(t, tc.key, row.Key)
			assert.Equal(t, tc.raw, row.RawValue)
			assert.Equal(t, string(tc.valueType), row.ValueType)

			got, err := store.Get(ctx, row.Key, tc.def)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestGetAbsentReturnsDefault(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, def := range []any{nil, 42, "fallback", false, []any{"x"}} {
		got, err := store.Get(ctx, "nonexistent-key", def)
		require.NoError(t, err)
		assert.Equal(t, def, got)
	}
}

func TestGetEmptyKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrKeyEmpty)

	_, err = store.Set(context.Background(), "", 1, TypeInteger)
	require.ErrorIs(t, err, ErrKeyEmpty)
}

func TestOverwriteReplacesTag(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Set(ctx, "k", 7, TypeInteger)
	require.NoError(t, err)

	_, err = store.Set(ctx, "k", "hello", TypeString)
	require.NoError(t, err)

	got, err := store.Get(ctx, "k", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestGetMalformedRawValue(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		row         models.Setting
		expectedErr error
	}{
		{
			name:        "boolean maybe",
			row:         models.Setting{Key: "k", RawValue: "maybe", ValueType: "boolean"},
			expectedErr: ErrInvalidBoolean,
		},
		{
			name:        "broken json",
			row:         models.Setting{Key: "k", RawValue: "{not json", ValueType: "json"},
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "json with trailing data",
			row:         models.Setting{Key: "k", RawValue: `{"a":1} {"b":2}`, ValueType: "json"},
			expectedErr: ErrInvalidJSON,
		},
		{
			name: "integer with fraction",
			row:  models.Setting{Key: "k", RawValue: "12.5", ValueType: "integer"},
		},
		{
			name:        "unknown tag",
			row:         models.Setting{Key: "k", RawValue: "1.5", ValueType: "float"},
			expectedErr: ErrUnknownValueType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := newTestStore(t, tc.row)

			got, err := store.Get(ctx, "k", "default")
			require.Error(t, err)
			assert.Nil(t, got)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, "k", decodeErr.Key)
			assert.Equal(t, ValueType(tc.row.ValueType), decodeErr.Type)
			assert.Equal(t, tc.row.RawValue, decodeErr.Raw)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}
}

func TestSetEncodeErrorLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		value       any
		valueType   ValueType
		expectedErr error
	}{
		{name: "string under integer", value: "abc", valueType: TypeInteger},
		{name: "fraction under integer", value: 2.5, valueType: TypeInteger, expectedErr: ErrUnsupportedValue},
		{name: "overflowing uint", value: uint64(1 << 63), valueType: TypeInteger, expectedErr: ErrUnsupportedValue},
		{name: "bad boolean token", value: "maybe", valueType: TypeBoolean, expectedErr: ErrInvalidBoolean},
		{name: "int under boolean", value: 1, valueType: TypeBoolean, expectedErr: ErrUnsupportedValue},
		{name: "channel under json", value: make(chan int), valueType: TypeJSON, expectedErr: ErrUnsupportedValue},
		{name: "invalid raw json", value: json.RawMessage("{"), valueType: TypeJSON, expectedErr: ErrInvalidJSON},
		{name: "int under string", value: 5, valueType: TypeString, expectedErr: ErrUnsupportedValue},
		{name: "unknown tag", value: 5, valueType: ValueType("float"), expectedErr: ErrUnknownValueType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, repo := newTestStore(t)

			_, err := store.Set(ctx, "k", 5, TypeInteger, WithDescription("original"))
			require.NoError(t, err)

			row, err := store.Set(ctx, "k", tc.value, tc.valueType, WithDescription("changed"))
			require.Error(t, err)
			assert.Nil(t, row)

			var encodeErr *EncodeError
			require.ErrorAs(t, err, &encodeErr)
			assert.Equal(t, "k", encodeErr.Key)
			assert.Equal(t, tc.valueType, encodeErr.Type)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			}

			stored, err := repo.Find(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "5", stored.RawValue)
			assert.Equal(t, "integer", stored.ValueType)
			assert.Equal(t, "original", stored.Description)
		})
	}
}

func TestSetOptions(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	_, err := store.Set(ctx, "site_name", "A", TypeString, WithDescription("Display name"), WithSystem(true))
	require.NoError(t, err)

	// omitted options keep the stored description and flag
	row, err := store.Set(ctx, "site_name", "B", TypeString)
	require.NoError(t, err)
	assert.Equal(t, "B", row.RawValue)
	assert.Equal(t, "Display name", row.Description)
	assert.True(t, row.IsSystem)

	row, err = store.Set(ctx, "site_name", "C", TypeString, WithSystem(false))
	require.NoError(t, err)
	assert.False(t, row.IsSystem)

	err = repo.Delete(ctx, "site_name")
	require.NoError(t, err)
}

func TestSetDefault(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	row, err := store.SetDefault(ctx, "max_bookings_per_slot", 10, TypeInteger)
	require.NoError(t, err)
	assert.Equal(t, "10", row.RawValue)

	_, err = store.Set(ctx, "max_bookings_per_slot", 3, TypeInteger)
	require.NoError(t, err)

	row, err = store.SetDefault(ctx, "max_bookings_per_slot", 10, TypeInteger)
	require.NoError(t, err)
	assert.Equal(t, "3", row.RawValue)
}

func TestTypedGetters(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Set(ctx, "max_bookings_per_slot", 5, TypeInteger)
	require.NoError(t, err)
	_, err = store.Set(ctx, "enable_waitlist", "yes", TypeBoolean)
	require.NoError(t, err)
	_, err = store.Set(ctx, "site_name", "Chua", TypeString)
	require.NoError(t, err)

	n, err := store.GetInt(ctx, "max_bookings_per_slot", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = store.GetInt(ctx, "missing", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	b, err := store.GetBool(ctx, "enable_waitlist", false)
	require.NoError(t, err)
	assert.True(t, b)

	s, err := store.GetString(ctx, "site_name", "")
	require.NoError(t, err)
	assert.Equal(t, "Chua", s)

	_, err = store.GetInt(ctx, "site_name", 0)
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = store.GetBool(ctx, "max_bookings_per_slot", false)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t,
		models.Setting{Key: "broken", RawValue: `{"open": 6}`, ValueType: "json"},
		models.Setting{Key: "plain", RawValue: "x", ValueType: "string"},
	)

	type hours struct {
		Open  string `json:"open"`
		Close string `json:"close"`
	}

	_, err := store.Set(ctx, "opening_hours", hours{Open: "06:00", Close: "21:00"}, TypeJSON)
	require.NoError(t, err)

	var got hours
	found, err := store.GetJSON(ctx, "opening_hours", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, hours{Open: "06:00", Close: "21:00"}, got)

	found, err = store.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = store.GetJSON(ctx, "plain", &got)
	require.ErrorIs(t, err, ErrTypeMismatch)

	var decodeErr *DecodeError
	_, err = store.GetJSON(ctx, "broken", &got)
	require.ErrorAs(t, err, &decodeErr)
}

type failingRepo struct {
	err error
}

func (f failingRepo) Find(context.Context, string) (*models.Setting, error) {
	return nil, f.err
}

func (f failingRepo) Upsert(context.Context, string, setting.Fields) (*models.Setting, error) {
	return nil, f.err
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("connection refused")
	store := New(failingRepo{err: errBoom})

	_, err := store.Get(ctx, "k", 1)
	require.ErrorIs(t, err, errBoom)

	_, err = store.Set(ctx, "k", 1, TypeInteger)
	require.ErrorIs(t, err, errBoom)

	var encodeErr *EncodeError
	assert.NotErrorAs(t, err, &encodeErr)
}

func TestNilStore(t *testing.T) {
	var store *Store

	_, err := store.Get(context.Background(), "k", nil)
	require.ErrorIs(t, err, ErrRepositoryNil)

	_, err = New(nil).Set(context.Background(), "k", 1, TypeInteger)
	require.ErrorIs(t, err, ErrRepositoryNil)
}

func TestJSONKeepsLargeIntegers(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	row, err := store.Set(ctx, "gateway", map[string]any{"id": int64(9007199254740993)}, TypeJSON)
	require.NoError(t, err)
	assert.Equal(t, `{"id":9007199254740993}`, row.RawValue)

	got, err := store.Get(ctx, "gateway", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": json.Number("9007199254740993")}, got)

	// writing the decoded value back yields the same text
	again, err := store.Set(ctx, "gateway", got, TypeJSON)
	require.NoError(t, err)
	assert.Equal(t, row.RawValue, again.RawValue)
}

func TestConcurrentSetLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	type pair struct{ raw, vt string }

	writes := []struct {
		value any
		vt    ValueType
	}{
		{value: 1, vt: TypeInteger},
		{value: "one", vt: TypeString},
		{value: true, vt: TypeBoolean},
		{value: []string{"a@x.com"}, vt: TypeJSON},
		{value: 2, vt: TypeInteger},
		{value: "two", vt: TypeString},
		{value: false, vt: TypeBoolean},
		{value: map[string]int{"n": 3}, vt: TypeJSON},
	}

	valid := make(map[pair]struct{}, len(writes))

	var wg sync.WaitGroup

	for _, w := range writes {
		raw, err := w.vt.Encode(w.value)
		require.NoError(t, err)
		valid[pair{raw: raw, vt: string(w.vt)}] = struct{}{}

		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errSet := store.Set(ctx, "contested", w.value, w.vt)
			assert.NoError(t, errSet)
		}()
	}

	wg.Wait()

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// raw value and tag always come from the same write
	assert.Contains(t, valid, pair{raw: rows[0].RawValue, vt: rows[0].ValueType})

	_, err = store.Get(ctx, "contested", nil)
	require.NoError(t, err)
}
