// Package api implements the JSON settings API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/controller/setting"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
	"github.com/PagodaAdmin/PagodaAdmin/internal/settings"
	"github.com/PagodaAdmin/PagodaAdmin/internal/web/handler"
)

const (
	// Path is the settings collection below handler.APIPath.
	Path = "/settings"

	keyParam       = "key"
	defaultTimeout = 10 * time.Second
)

// Repository is the storage the handler reads and deletes through.
type Repository interface {
	Find(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Delete(ctx context.Context, key string) error
}

// Setting is the JSON representation of one stored setting.
type Setting struct {
	Key         string    `json:"key"`
	Value       any       `json:"value"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	System      bool      `json:"system"`
	UID         string    `json:"uid"`
	UpdatedAt   time.Time `json:"updated_at"`
	Error       string    `json:"error,omitempty"`
}

// PutRequest is the body of PUT /settings/:key.
type PutRequest struct {
	Value       any     `json:"value"`
	Type        string  `json:"type"                  validate:"required,oneof=string integer boolean json"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	System      *bool   `json:"system,omitempty"`
}

// Service is the settings API handler.
type Service struct {
	store     *settings.Store
	repo      Repository
	auth      fiber.Handler
	validator *handler.XValidator
}

// New returns the handler. auth guards the mutating routes.
func New(store *settings.Store, repo Repository, auth fiber.Handler) *Service {
	return &Service{
		store:     store,
		repo:      repo,
		auth:      auth,
		validator: handler.NewValidator(),
	}
}

// Init registers the routes below router.
func (s *Service) Init(router fiber.Router) error {
	if s == nil || s.store == nil || s.repo == nil || s.auth == nil {
		return handler.ErrNilDependency
	}

	group := router.Group(Path)
	group.Get("/", s.List)
	group.Get("/:"+keyParam, s.Get)
	group.Put("/:"+keyParam, s.auth, s.Put)
	group.Delete("/:"+keyParam, s.auth, s.Delete)

	return nil
}

// List returns every setting ordered by key.
// A value that does not decode is reported on its entry, the rest still render.
func (s *Service) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), defaultTimeout)
	defer cancel()

	rows, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list settings")

		return handler.SendError(c, fiber.StatusInternalServerError, "failed to list settings")
	}

	out := make([]Setting, 0, len(rows))

	for i := range rows {
		item := toSetting(&rows[i])

		if value, errDecode := settings.Decode(&rows[i]); errDecode != nil {
			item.Error = errDecode.Error()
		} else {
			item.Value = value
		}

		out = append(out, item)
	}

	return c.JSON(out) //nolint:wrapcheck
}

// Get returns one decoded setting.
func (s *Service) Get(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), defaultTimeout)
	defer cancel()

	key := c.Params(keyParam)

	row, err := s.repo.Find(ctx, key)
	if err != nil {
		return s.sendStorageError(c, key, err)
	}

	value, err := settings.Decode(row)
	if err != nil {
		return handler.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	item := toSetting(row)
	item.Value = value

	return c.JSON(item) //nolint:wrapcheck
}

// Put creates or replaces a setting.
func (s *Service) Put(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), defaultTimeout)
	defer cancel()

	key := c.Params(keyParam)

	var req PutRequest
	if err := decodeBody(c.Body(), &req); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if errs := s.validator.Validate(&req); len(errs) > 0 {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid request body", errs...)
	}

	if req.Value == nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid request body",
			handler.ValidationError{Field: "value", Tag: "required"})
	}

	vt, err := settings.ParseValueType(req.Type)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var opts []settings.Option
	if req.Description != nil {
		opts = append(opts, settings.WithDescription(*req.Description))
	}

	if req.System != nil {
		opts = append(opts, settings.WithSystem(*req.System))
	}

	row, err := s.store.Set(ctx, key, req.Value, vt, opts...)
	if err != nil {
		var encErr *settings.EncodeError
		if errors.As(err, &encErr) {
			return handler.SendError(c, fiber.StatusUnprocessableEntity, encErr.Error())
		}

		return s.sendStorageError(c, key, err)
	}

	log.Info().Str("key", key).Str("type", row.ValueType).
		Interface("user", c.Locals("username")).Msg("setting stored")

	item := toSetting(row)
	item.Value, _ = settings.Decode(row) // Set verified the value decodes

	return c.JSON(item) //nolint:wrapcheck
}

// Delete removes a setting. System settings are refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), defaultTimeout)
	defer cancel()

	key := c.Params(keyParam)

	if err := s.repo.Delete(ctx, key); err != nil {
		return s.sendStorageError(c, key, err)
	}

	log.Info().Str("key", key).Interface("user", c.Locals("username")).Msg("setting deleted")

	return c.SendStatus(fiber.StatusNoContent) //nolint:wrapcheck
}

func (s *Service) sendStorageError(c *fiber.Ctx, key string, err error) error {
	switch {
	case errors.Is(err, setting.ErrSettingNotFound):
		return handler.SendError(c, fiber.StatusNotFound, "setting "+key+" not found")
	case errors.Is(err, setting.ErrSettingKeyEmpty):
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, setting.ErrSettingIsSystem):
		return handler.SendError(c, fiber.StatusForbidden, "setting "+key+" is a system setting")
	default:
		log.Error().Err(err).Str("key", key).Msg("settings storage failed")

		return handler.SendError(c, fiber.StatusInternalServerError, "settings storage failed")
	}
}

// decodeBody keeps JSON numbers as json.Number so large integers survive.
func decodeBody(body []byte, req *PutRequest) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	return dec.Decode(req) //nolint:wrapcheck
}

func toSetting(row *models.Setting) Setting {
	return Setting{
		Key:         row.Key,
		Type:        row.ValueType,
		Description: row.Description,
		System:      row.IsSystem,
		UID:         row.UID,
		UpdatedAt:   row.UpdatedAt,
	}
}
