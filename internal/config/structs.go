package config

import (
	"github.com/PagodaAdmin/PagodaAdmin/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Admin     Admin
	Seed      []SeedSetting
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int    // listening port for the webserver
	URL          string // base url for the webserver
	ShutDownTime int    // seconds /checkalive reports 503 before the server stops
	BodyLimit    int    // max request body size in bytes
}

// Admin holds the bootstrap administrator account.
type Admin struct {
	Username string
	Password string // generated and reported once when empty
	Email    string
}

// SeedSetting is a setting written at startup when its key does not exist yet.
type SeedSetting struct {
	Key         string
	Value       string
	Type        string // string, integer, boolean or json
	Description string
	System      bool
}
