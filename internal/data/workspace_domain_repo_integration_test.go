package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristasoft/guestauth/internal/ports"
	"github.com/kristasoft/guestauth/internal/testutil"
)

func TestWorkspaceDomainRepo_Integration_RegistersUnknownDomain(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewWorkspaceDomainRepo(db)
		ctx := context.Background()

		require.NoError(t, repo.EnsureAllowed(ctx, "guest_1@kristasoft.com"))

		domains, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"kristasoft.com"}, domains)

		// Re-validating a now-supported domain is a no-op.
		require.NoError(t, repo.EnsureAllowed(ctx, "guest_2@kristasoft.com"))
		domains, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, domains, 1)
	})
}

func TestWorkspaceDomainRepo_Integration_RestrictedRejectsUnknownDomain(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewWorkspaceDomainRepo(db)
		ctx := context.Background()

		require.NoError(t, repo.EnsureAllowed(ctx, "guest_1@kristasoft.com"))

		repo.Restricted = true

		// A supported domain still passes in validate-only mode.
		require.NoError(t, repo.EnsureAllowed(ctx, "guest_2@kristasoft.com"))

		err := repo.EnsureAllowed(ctx, "guest_3@elsewhere.example")
		require.ErrorIs(t, err, ports.ErrDomainNotAllowed)

		// The rejected domain was not registered.
		domains, listErr := repo.List(ctx)
		require.NoError(t, listErr)
		assert.Equal(t, []string{"kristasoft.com"}, domains)
	})
}
