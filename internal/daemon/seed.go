package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/PagodaAdmin/PagodaAdmin/internal/auth"
	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
	"github.com/PagodaAdmin/PagodaAdmin/internal/settings"
)

// Seed creates the admin user, the booking defaults and the configured
// settings. Existing rows are never overwritten.
func (d *Daemon) Seed(ctx context.Context, cfg *config.Config) (auth.AdminSeed, error) {
	if cfg == nil {
		return auth.AdminSeed{}, errors.New("config is nil")
	}

	admin, err := d.Users.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		return auth.AdminSeed{}, errors.Wrap(err, "failed to seed admin user")
	}

	if err = d.Booking.RegisterDefaults(ctx); err != nil {
		return admin, errors.Wrap(err, "failed to seed booking defaults")
	}

	for _, s := range cfg.Seed {
		vt, err := settings.ParseValueType(s.Type)
		if err != nil {
			return admin, errors.Wrapf(err, "seed %s", s.Key)
		}

		opts := []settings.Option{settings.WithSystem(s.System)}
		if s.Description != "" {
			opts = append(opts, settings.WithDescription(s.Description))
		}

		if _, err = d.Store.SetDefault(ctx, s.Key, vt.FromText(s.Value), vt, opts...); err != nil {
			return admin, errors.Wrapf(err, "seed %s", s.Key)
		}

		log.Debug().Str("key", s.Key).Str("type", vt.String()).Msg("seed setting checked")
	}

	return admin, nil
}
