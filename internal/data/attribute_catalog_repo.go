package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kristasoft/guestauth/internal/data/pgxutil"
	"github.com/kristasoft/guestauth/internal/ports"
)

// AttributeCatalogRepo exposes the tenant's configured person attribute
// definitions. It implements ports.AttributeCatalog.
type AttributeCatalogRepo struct {
	DB *sql.DB
}

// NewAttributeCatalogRepo creates a new attribute catalog repository.
func NewAttributeCatalogRepo(db *sql.DB) *AttributeCatalogRepo {
	return &AttributeCatalogRepo{DB: db}
}

var _ ports.AttributeCatalog = (*AttributeCatalogRepo)(nil)

// Known returns the set of attribute names defined for the tenant.
func (r *AttributeCatalogRepo) Known(ctx context.Context) (map[string]struct{}, error) {
	var names []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT name FROM attribute_definitions`)
		if err != nil {
			return err
		}
		defer rows.Close()

		names, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load attribute catalog: %w", err)
	}

	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	return known, nil
}

// Define registers an attribute name in the catalog. Used by migrations
// and dev seeding; defining an existing name is a no-op.
func (r *AttributeCatalogRepo) Define(ctx context.Context, name string) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO attribute_definitions (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING`, name)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("define attribute %q: %w", name, err)
	}
	return nil
}
