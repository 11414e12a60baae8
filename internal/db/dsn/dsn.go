// Package dsn builds Data Source Names for the network database drivers.
package dsn

import (
	"fmt"
	"strings"

	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
)

// MySQL builds a go-sql-driver DSN. parseTime is always set so DATETIME
// columns scan into time.Time.
func MySQL(db *config.DB) string {
	port := db.Port
	if port == 0 {
		port = defaultMySQLPort
	}

	params := "parseTime=true"
	if db.Extras != "" {
		params += "&" + strings.TrimPrefix(db.Extras, "?")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		port,
		db.Name,
		params,
	)
}

// Postgres builds a key=value DSN for pgx.
func Postgres(db *config.DB) string {
	port := db.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	parts := []string{
		"host=" + db.Host,
		fmt.Sprintf("port=%d", port),
		"user=" + db.User,
		"password=" + quote(db.Password),
		"dbname=" + db.Name,
	}

	if db.Extras != "" {
		parts = append(parts, db.Extras)
	}

	return strings.Join(parts, " ")
}

// quote wraps values containing spaces or quotes the way libpq expects.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}

	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(v) + "'"
}
