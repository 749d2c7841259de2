package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kristasoft/guestauth/internal/data/pgxutil"
	"github.com/kristasoft/guestauth/internal/domain/model"
	"github.com/kristasoft/guestauth/internal/ports"
)

// AccountRepo provides database operations for workspace accounts.
// It implements ports.AccountDirectory.
type AccountRepo struct {
	DB *sql.DB
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{DB: db}
}

var _ ports.AccountDirectory = (*AccountRepo)(nil)

const accountColumns = `id, email, display_name, avatar_url, person_id, inbox_id, attributes, created_at, updated_at`

// GetByID retrieves an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.getByQuery(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// LookupByEmail retrieves an account by its normalized email address.
func (r *AccountRepo) LookupByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getByQuery(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, model.NormalizeEmail(email))
}

func (r *AccountRepo) getByQuery(ctx context.Context, query, arg string) (*model.Account, error) {
	var out model.Account
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Account])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	if err := r.loadRoles(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create provisions a new account with its role assignments. A concurrent
// create racing on the same email resolves to the existing account.
func (r *AccountRepo) Create(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	if req == nil {
		return nil, errors.New("create account request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Account
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO accounts (email, display_name, attributes)
			VALUES ($1, $2, $3)
			RETURNING `+accountColumns,
			req.Email, req.DisplayName, req.Attributes)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Account])
		rows.Close()
		if err != nil {
			return err
		}

		for _, roleID := range req.RoleIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO account_roles (account_id, role_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, out.ID, roleID); err != nil {
				return fmt.Errorf("assign role %s: %w", roleID, err)
			}
		}
		return nil
	}})
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a create race (or a retried request); the existing
			// account is the account.
			existing, lookupErr := r.LookupByEmail(ctx, req.Email)
			if lookupErr != nil {
				return nil, fmt.Errorf("%w: re-resolve %q: %w", ErrAccountEmailExists, req.Email, lookupErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	out.RoleIDs = append(out.RoleIDs, req.RoleIDs...)
	return &out, nil
}

// UpdateAttribute overwrites a single attribute on the account.
func (r *AccountRepo) UpdateAttribute(ctx context.Context, accountID, name, value string) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE accounts
			SET attributes = attributes || jsonb_build_object($2::text, $3::text),
			    updated_at = NOW()
			WHERE id = $1`, accountID, name, value)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ports.ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ports.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("update attribute %s: %w", name, err)
	}
	return nil
}

func (r *AccountRepo) loadRoles(ctx context.Context, account *model.Account) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT role_id FROM account_roles WHERE account_id = $1 ORDER BY role_id`, account.ID)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		account.RoleIDs = ids
		return nil
	})
	if err != nil {
		return fmt.Errorf("load account roles: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
