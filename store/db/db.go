// Package db provides database driver selection.
package db

import (
	"github.com/pkg/errors"

	"github.com/tagwise/tagwise/internal/profile"
	"github.com/tagwise/tagwise/store"
	"github.com/tagwise/tagwise/store/db/postgres"
	"github.com/tagwise/tagwise/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
