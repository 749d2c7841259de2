package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kristasoft/guestauth/internal/testutil"
)

func TestRoleRepo_Integration_GetOrCreateReusesExisting(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewRoleRepo(db)
		ctx := context.Background()

		first, err := repo.GetOrCreate(ctx, "Krista Guest User")
		require.NoError(t, err)

		second, err := repo.GetOrCreate(ctx, "Krista Guest User")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		roles, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, roles, 1)
	})
}

// Concurrent creates of the same name race past the initial lookup; the
// losers hit the unique index and must re-resolve to the winner's id.
func TestRoleRepo_Integration_GetOrCreateConcurrentSameName(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewRoleRepo(db)
		ctx := context.Background()

		const workers = 8
		ids := make([]string, workers)

		var g errgroup.Group
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			g.Go(func() error {
				<-start
				role, err := repo.GetOrCreate(ctx, "Krista Guest User")
				if err != nil {
					return err
				}
				ids[i] = role.ID
				return nil
			})
		}
		close(start)
		require.NoError(t, g.Wait())

		for _, id := range ids[1:] {
			assert.Equal(t, ids[0], id)
		}

		roles, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, ids[0], roles[0].ID)
	})
}
