// Package booking exposes the pagoda booking configuration on top of the typed settings store.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/PagodaAdmin/PagodaAdmin/internal/settings"
)

// Keys of the booking settings.
const (
	KeyMaxBookingsPerSlot = "max_bookings_per_slot"
	KeyEnableWaitlist     = "enable_waitlist"
	KeyNotifyEmails       = "notify_emails"
	KeySlotDurationMin    = "slot_duration_minutes"
)

// Policy is the complete booking configuration.
type Policy struct {
	MaxBookingsPerSlot int           `json:"maxBookingsPerSlot"`
	WaitlistEnabled    bool          `json:"waitlistEnabled"`
	NotifyEmails       []string      `json:"notifyEmails"`
	SlotDuration       time.Duration `json:"slotDuration"`
}

// Definition describes one known booking setting.
type Definition struct {
	Key         string
	Type        settings.ValueType
	Default     any
	Description string
}

// Definitions lists the booking settings with their defaults.
func Definitions() []Definition {
	return []Definition{
		{
			Key:         KeyMaxBookingsPerSlot,
			Type:        settings.TypeInteger,
			Default:     10,
			Description: "Maximum number of bookings accepted per time slot",
		},
		{
			Key:         KeyEnableWaitlist,
			Type:        settings.TypeBoolean,
			Default:     false,
			Description: "Accept waitlist entries once a slot is full",
		},
		{
			Key:         KeyNotifyEmails,
			Type:        settings.TypeJSON,
			Default:     []string{},
			Description: "Addresses notified about new bookings",
		},
		{
			Key:         KeySlotDurationMin,
			Type:        settings.TypeInteger,
			Default:     60,
			Description: "Length of a booking slot in minutes",
		},
	}
}

// Settings reads and writes the booking configuration.
type Settings struct {
	store *settings.Store
}

// New creates Settings using store.
func New(store *settings.Store) *Settings {
	return &Settings{store: store}
}

// RegisterDefaults writes every booking setting that does not exist yet.
func (s *Settings) RegisterDefaults(ctx context.Context) error {
	for _, d := range Definitions() {
		_, err := s.store.SetDefault(ctx, d.Key, d.Default, d.Type,
			settings.WithDescription(d.Description),
			settings.WithSystem(true),
		)
		if err != nil {
			return fmt.Errorf("register %s: %w", d.Key, err)
		}
	}

	return nil
}

// Defaults returns the policy used when nothing is stored.
func Defaults() Policy {
	return Policy{
		MaxBookingsPerSlot: 10,
		WaitlistEnabled:    false,
		NotifyEmails:       []string{},
		SlotDuration:       time.Hour,
	}
}

// MaxBookingsPerSlot returns the booking cap per slot.
func (s *Settings) MaxBookingsPerSlot(ctx context.Context) (int, error) {
	return s.store.GetInt(ctx, KeyMaxBookingsPerSlot, Defaults().MaxBookingsPerSlot)
}

// WaitlistEnabled reports whether full slots accept waitlist entries.
func (s *Settings) WaitlistEnabled(ctx context.Context) (bool, error) {
	return s.store.GetBool(ctx, KeyEnableWaitlist, Defaults().WaitlistEnabled)
}

// NotifyEmails returns the notification recipients.
func (s *Settings) NotifyEmails(ctx context.Context) ([]string, error) {
	var emails []string

	found, err := s.store.GetJSON(ctx, KeyNotifyEmails, &emails)
	if err != nil {
		return nil, err
	}
	if !found || emails == nil {
		return []string{}, nil
	}

	return emails, nil
}

// SlotDuration returns the booking slot length.
func (s *Settings) SlotDuration(ctx context.Context) (time.Duration, error) {
	minutes, err := s.store.GetInt(ctx, KeySlotDurationMin, int(Defaults().SlotDuration/time.Minute))
	if err != nil {
		return 0, err
	}

	return time.Duration(minutes) * time.Minute, nil
}

// Load reads the complete policy.
func (s *Settings) Load(ctx context.Context) (Policy, error) {
	var (
		p   Policy
		err error
	)

	if p.MaxBookingsPerSlot, err = s.MaxBookingsPerSlot(ctx); err != nil {
		return Policy{}, err
	}
	if p.WaitlistEnabled, err = s.WaitlistEnabled(ctx); err != nil {
		return Policy{}, err
	}
	if p.NotifyEmails, err = s.NotifyEmails(ctx); err != nil {
		return Policy{}, err
	}
	if p.SlotDuration, err = s.SlotDuration(ctx); err != nil {
		return Policy{}, err
	}

	return p, nil
}

// Save writes the complete policy. Settings are written one by one; a failure
// leaves the keys written before it in place.
func (s *Settings) Save(ctx context.Context, p Policy) error {
	if p.MaxBookingsPerSlot < 0 {
		return fmt.Errorf("%w: max bookings per slot must not be negative", ErrInvalidPolicy)
	}
	if p.SlotDuration < time.Minute || p.SlotDuration%time.Minute != 0 {
		return fmt.Errorf("%w: slot duration must be a whole number of minutes", ErrInvalidPolicy)
	}

	emails := p.NotifyEmails
	if emails == nil {
		emails = []string{}
	}

	writes := []struct {
		key   string
		value any
		vt    settings.ValueType
	}{
		{KeyMaxBookingsPerSlot, p.MaxBookingsPerSlot, settings.TypeInteger},
		{KeyEnableWaitlist, p.WaitlistEnabled, settings.TypeBoolean},
		{KeyNotifyEmails, emails, settings.TypeJSON},
		{KeySlotDurationMin, int(p.SlotDuration / time.Minute), settings.TypeInteger},
	}

	for _, w := range writes {
		if _, err := s.store.Set(ctx, w.key, w.value, w.vt); err != nil {
			return err
		}
	}

	return nil
}
