package config

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Driver   string // sqlite, mysql or postgres
	Path     string // database file, sqlite only
	Extras   string // extra DSN parameters
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Debug    bool // log every SQL statement
}
