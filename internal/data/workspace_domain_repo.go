package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kristasoft/guestauth/internal/data/pgxutil"
	"github.com/kristasoft/guestauth/internal/domain/model"
	"github.com/kristasoft/guestauth/internal/ports"
)

// WorkspaceDomainRepo maintains the workspace's supported email domains.
// It implements ports.DomainAllowlist: a guest email is accepted when its
// domain is already supported or can be registered for the workspace.
type WorkspaceDomainRepo struct {
	DB *sql.DB

	// Restricted switches the allow-list into validate-only mode: unknown
	// domains are rejected instead of registered.
	Restricted bool
}

// NewWorkspaceDomainRepo creates a new workspace domain repository.
func NewWorkspaceDomainRepo(db *sql.DB) *WorkspaceDomainRepo {
	return &WorkspaceDomainRepo{DB: db}
}

var _ ports.DomainAllowlist = (*WorkspaceDomainRepo)(nil)

// EnsureAllowed validates the email's domain against the workspace domain
// set, registering it when absent (unless Restricted).
func (r *WorkspaceDomainRepo) EnsureAllowed(ctx context.Context, email string) error {
	domain := model.EmailDomain(email)
	if domain == "" {
		return fmt.Errorf("%w: %q has no domain", ports.ErrDomainNotAllowed, email)
	}

	supported, err := r.exists(ctx, domain)
	if err != nil {
		return fmt.Errorf("check workspace domain %q: %w", domain, err)
	}
	if supported {
		return nil
	}
	if r.Restricted {
		return fmt.Errorf("%w: %q", ports.ErrDomainNotAllowed, domain)
	}

	if err := r.register(ctx, domain); err != nil {
		return fmt.Errorf("register workspace domain %q: %w", domain, err)
	}
	return nil
}

// List returns all supported domains for the workspace.
func (r *WorkspaceDomainRepo) List(ctx context.Context) ([]string, error) {
	var out []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT domain FROM workspace_domains ORDER BY domain`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list workspace domains: %w", err)
	}
	return out, nil
}

func (r *WorkspaceDomainRepo) exists(ctx context.Context, domain string) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM workspace_domains WHERE domain = $1)`, domain).Scan(&exists)
	})
	return exists, err
}

func (r *WorkspaceDomainRepo) register(ctx context.Context, domain string) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO workspace_domains (domain) VALUES ($1)
			ON CONFLICT (domain) DO NOTHING`, domain)
		return execErr
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}
