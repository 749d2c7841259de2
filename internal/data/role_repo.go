package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kristasoft/guestauth/internal/data/pgxutil"
	"github.com/kristasoft/guestauth/internal/domain/model"
	"github.com/kristasoft/guestauth/internal/ports"
)

// RoleRepo provides database operations for workspace roles.
// It implements ports.RoleStore.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new role repository.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

var _ ports.RoleStore = (*RoleRepo)(nil)

const roleColumns = `id, name, created_at`

// GetOrCreate returns the role with the given name, creating it when
// absent. Two concurrent creates for the same name both resolve to the
// same role id: the loser of the insert race re-reads by name.
func (r *RoleRepo) GetOrCreate(ctx context.Context, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("role name is required and cannot be empty")
	}

	if role, err := r.getByName(ctx, name); err == nil {
		return role, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup role %q: %w", name, err)
	}

	var out model.Role
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO roles (name) VALUES ($1)
			RETURNING `+roleColumns, name)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Role])
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Another request created the role first; it wins.
			role, lookupErr := r.getByName(ctx, name)
			if lookupErr != nil {
				return nil, fmt.Errorf("%w: re-resolve %q: %w", ErrRoleNameExists, name, lookupErr)
			}
			return role, nil
		}
		return nil, fmt.Errorf("create role %q: %w", name, err)
	}
	return &out, nil
}

// List returns all workspace roles ordered by name.
func (r *RoleRepo) List(ctx context.Context) ([]*model.Role, error) {
	var out []*model.Role
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Role])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return out, nil
}

func (r *RoleRepo) getByName(ctx context.Context, name string) (*model.Role, error) {
	var out model.Role
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Role])
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
