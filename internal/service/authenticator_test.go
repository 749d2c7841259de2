package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristasoft/guestauth/internal/domain/model"
	mocks "github.com/kristasoft/guestauth/internal/mocks/guestauth"
)

func newAuthenticatorFixture() (*Authenticator, *mocks.MemorySessionStore, *mocks.MemoryAccountDirectory) {
	sessions := mocks.NewMemorySessionStore()
	directory := mocks.NewMemoryAccountDirectory()
	authn := NewAuthenticator(AuthenticatorOptions{
		Sessions:            sessions,
		Directory:           directory,
		PlatformAccountID:   "platform-account",
		AuthorizedAccountID: "platform-account",
	})
	return authn, sessions, directory
}

func seedAccount(directory *mocks.MemoryAccountDirectory, id string) {
	directory.Add(&model.Account{
		ID:          id,
		Email:       id + "@kristasoft.com",
		DisplayName: id,
		CreatedAt:   time.Now(),
	})
}

func TestResolve_UpsertRouteBypassesSession(t *testing.T) {
	authn, sessions, _ := newAuthenticatorFixture()

	result, err := authn.Resolve(context.Background(), ResolveInput{
		Route: RouteAttributeUpsert,
		Token: "ignored-token",
	})

	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, "platform-account", result.AccountID)
	assert.Equal(t, 0, sessions.LookupCalls)
}

func TestResolve_LiveSessionReturnsAccount(t *testing.T) {
	authn, sessions, directory := newAuthenticatorFixture()
	seedAccount(directory, "guest-1")
	sessions.Bind("token-1", "guest-1")

	result, err := authn.Resolve(context.Background(), ResolveInput{
		Route: RouteOther,
		Token: "token-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, "guest-1", result.AccountID)
}

func TestResolve_UnknownTokenOnLoginRouteFallsBack(t *testing.T) {
	authn, _, _ := newAuthenticatorFixture()

	result, err := authn.Resolve(context.Background(), ResolveInput{
		Route: RouteLogin,
		Token: "expired-token",
	})

	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, "platform-account", result.AccountID)
}

func TestResolve_DanglingSessionTreatedAsMiss(t *testing.T) {
	authn, sessions, directory := newAuthenticatorFixture()
	seedAccount(directory, "guest-1")
	sessions.Bind("token-1", "guest-1")
	directory.Remove("guest-1")

	result, err := authn.Resolve(context.Background(), ResolveInput{
		Route: RouteLogin,
		Token: "token-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, "platform-account", result.AccountID)
}

func TestResolve_StoreFailureFallsThroughToProvisioning(t *testing.T) {
	authn, sessions, _ := newAuthenticatorFixture()
	sessions.LookupErr = errors.New("redis down")

	result, err := authn.Resolve(context.Background(), ResolveInput{
		Route: RouteLogin,
		Token: "token-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, "platform-account", result.AccountID)
}

func TestResolve_NoTokenOutsideLoginIsUnauthenticated(t *testing.T) {
	authn, _, _ := newAuthenticatorFixture()

	result, err := authn.Resolve(context.Background(), ResolveInput{Route: RouteOther})

	require.NoError(t, err)
	assert.False(t, result.Authenticated)
	assert.Empty(t, result.AccountID)
}

func TestResolve_MissingAuthorizedAccountFails(t *testing.T) {
	authn := NewAuthenticator(AuthenticatorOptions{
		Sessions:  mocks.NewMemorySessionStore(),
		Directory: mocks.NewMemoryAccountDirectory(),
	})

	_, err := authn.Resolve(context.Background(), ResolveInput{Route: RouteLogin})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = authn.Resolve(context.Background(), ResolveInput{Route: RouteAttributeUpsert})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
