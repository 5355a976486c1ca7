package pg

import (
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Migrate runs the goose SQL migrations in dir against the configured
// postgres database.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, dir)
}
