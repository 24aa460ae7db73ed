package rowmap

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

// Migrate applies migrations from src on the connection, returns number of
// applied migrations.
//
// It is suggested to manage DB schema with migrations, rowmap does not create
// tables for you.
func (c *Connector) Migrate(src migrate.MigrationSource, dir migrate.MigrationDirection) (int, error) {
	c.lock.RLock()
	db, d := c.db, c.dia
	c.lock.RUnlock()

	if db == nil {
		return 0, ErrNotConnected
	}

	name := d.MigrateDialect()
	if name == "" {
		return 0, fmt.Errorf("%w: %s", ErrMigrate, d.DriverName())
	}

	return migrate.Exec(db.DB, name, src, dir)
}
