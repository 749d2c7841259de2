// Package devseed populates a development database with the workspace
// state a fresh guest deployment expects: the guest and admin roles,
// the baseline attribute catalog, and an allow-listed dev domain.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kristasoft/guestauth/config"
	"github.com/kristasoft/guestauth/internal/data"
)

// Seed applies the development fixtures. Every step is idempotent, so
// re-running against an already seeded database is safe.
func Seed(ctx context.Context, db *sql.DB, guest config.GuestConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	roles := data.NewRoleRepo(db)
	for _, name := range []string{guest.DefaultRole, guest.AdminRole} {
		if _, err := roles.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}

	catalog := data.NewAttributeCatalogRepo(db)
	for _, name := range []string{"DEPARTMENT", "LOCALE", "REFERRER"} {
		if err := catalog.Define(ctx, name); err != nil {
			return fmt.Errorf("seed attribute %q: %w", name, err)
		}
	}

	domains := data.NewWorkspaceDomainRepo(db)
	devAddress := "dev@" + guest.DefaultDomain
	if err := domains.EnsureAllowed(ctx, devAddress); err != nil {
		return fmt.Errorf("seed allowed domain: %w", err)
	}

	logger.InfoContext(ctx, "development seed data applied",
		"roles", 2,
		"domain", guest.DefaultDomain)
	return nil
}
