package driver

import (
	"fmt"

	"github.com/dbsweep/dbsweep/internal/database"
	"github.com/dbsweep/dbsweep/internal/driver/postgres"
	"github.com/dbsweep/dbsweep/internal/driver/sqlite"
)

// NewDriver creates a new database driver based on the database type.
func NewDriver(databaseType database.DatabaseType) (Driver, error) {
	switch databaseType {
	case database.DatabaseTypePostgres:
		return postgres.NewDriver(), nil
	case database.DatabaseTypeSQLite:
		return sqlite.NewDriver(), nil
	case database.DatabaseTypeLibSQL:
		return sqlite.NewLibSQLDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}
}

var (
	_ Driver = (*postgres.Driver)(nil)
	_ Driver = (*sqlite.Driver)(nil)
)
