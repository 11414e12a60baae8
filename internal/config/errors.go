package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownDBDriver error if config db.driver is not supported.
	ErrUnknownDBDriver = errors.New("toml config db.driver must be sqlite, mysql or postgres")

	// ErrEmptyDBPath error if the sqlite driver is used without db.path.
	ErrEmptyDBPath = errors.New("toml config db.path can not be empty for sqlite")

	// ErrEmptyDBHost error if a network driver is used without db.host.
	ErrEmptyDBHost = errors.New("toml config db.host can not be empty for mysql or postgres")

	// ErrSeedKeyEmpty error if a seed entry has no key.
	ErrSeedKeyEmpty = errors.New("toml config seed.key can not be empty")
)
