package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristasoft/guestauth/config"
	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	mocks "github.com/kristasoft/guestauth/internal/mocks/guestauth"
	"github.com/kristasoft/guestauth/internal/ports"
)

type loginFixture struct {
	sessions  *mocks.MemorySessionStore
	payloads  *mocks.MemoryPayloadCache
	directory *mocks.MemoryAccountDirectory
	roles     *mocks.MemoryRoleStore
	domains   *mocks.StaticDomainAllowlist
	svc       *LoginService
}

func testGuestConfig() config.GuestConfig {
	return config.GuestConfig{
		DefaultRole:         "Krista Guest User",
		AdminRole:           "Workspace Admin",
		EmailPrefix:         "guest",
		PlatformDomain:      "omni.kristasoft.com",
		DefaultDomain:       "kristasoft.com",
		SessionTTLMinutes:   1440,
		PlatformAccountID:   "platform-account",
		AuthorizedAccountID: "platform-account",
		ReentrantReplay:     true,
	}
}

func newLoginFixture(guest config.GuestConfig) *loginFixture {
	f := &loginFixture{
		sessions:  mocks.NewMemorySessionStore(),
		payloads:  mocks.NewMemoryPayloadCache(),
		directory: mocks.NewMemoryAccountDirectory(),
		roles:     mocks.NewMemoryRoleStore(),
		domains:   &mocks.StaticDomainAllowlist{},
	}
	f.svc = NewLoginService(LoginOptions{
		Sessions:  f.sessions,
		Payloads:  f.payloads,
		Directory: f.directory,
		Roles:     f.roles,
		Domains:   f.domains,
		Guest:     guest,
		Now:       func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
	})
	return f
}

func TestLogin_ProvisionsGuestAccount(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	payload, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})

	require.NoError(t, err)
	assert.NotEmpty(t, payload.ClientSessionID)
	assert.NotEmpty(t, payload.AccountID)
	assert.Equal(t, "platform-account", payload.HostAccountID)
	assert.False(t, payload.IsAdmin)
	assert.False(t, payload.IsServiceCall)
	assert.True(t, payload.Extras.NewSession)
	assert.Equal(t, "2025-03-14T09:26:53 +0000", payload.Extras.CreationTime)

	// Session and cached payload are written together.
	assert.True(t, f.sessions.Has(payload.ClientSessionID))
	cached, ok := f.payloads.Stored(payload.ClientSessionID)
	require.True(t, ok)
	assert.Equal(t, payload, cached)

	// The provisioned account holds the default guest role.
	account, err := f.directory.GetByID(ctx, payload.AccountID)
	require.NoError(t, err)
	assert.Len(t, account.RoleIDs, 1)
	assert.True(t, strings.HasSuffix(account.Email, "@kristasoft.com"))
	assert.True(t, strings.HasPrefix(account.Email, "guest_"))
	assert.Equal(t, map[string]string{"email": account.Email}, payload.Attributes)
}

func TestLogin_SecondLoginReusesDefaultRole(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)

	second, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)
	require.NotEqual(t, first.AccountID, second.AccountID)

	// Both guests hold the same role id; the first login created it, the
	// second reused it instead of minting a duplicate.
	one, err := f.directory.GetByID(ctx, first.AccountID)
	require.NoError(t, err)
	two, err := f.directory.GetByID(ctx, second.AccountID)
	require.NoError(t, err)
	require.Len(t, one.RoleIDs, 1)
	require.Len(t, two.RoleIDs, 1)
	assert.Equal(t, one.RoleIDs[0], two.RoleIDs[0])

	roles, err := f.roles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestLogin_PlatformChannelSelectsPlatformDomain(t *testing.T) {
	f := newLoginFixture(testGuestConfig())

	payload, err := f.svc.Login(context.Background(), LoginInput{
		CallerAccountID:     "platform-account",
		FromPlatformChannel: true,
	})

	require.NoError(t, err)
	account, err := f.directory.GetByID(context.Background(), payload.AccountID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(account.Email, "@omni.kristasoft.com"))
}

func TestLogin_StampsFixedAttributes(t *testing.T) {
	f := newLoginFixture(testGuestConfig())

	payload, err := f.svc.Login(context.Background(), LoginInput{
		CallerAccountID: "platform-account",
		CustomAttributes: map[string]any{
			"DEPARTMENT": "support",
			"blank":      "",
			"number":     float64(7),
			"flag":       true,
		},
	})

	require.NoError(t, err)
	account, err := f.directory.GetByID(context.Background(), payload.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "KristaSoft", account.Attributes["ORG"])
	assert.Equal(t, "Omni Chatbot", account.Attributes["KRISTA_SOURCE"])
	assert.Equal(t, "OMNI", account.Attributes["SOURCE"])
	assert.Equal(t, "2025-03-14T09:26:53 +0000", account.Attributes["KRISTA_LAST_LOGIN"])
	assert.Equal(t, "support", account.Attributes["DEPARTMENT"])

	// Non-string and blank values are dropped, not coerced.
	assert.NotContains(t, account.Attributes, "blank")
	assert.NotContains(t, account.Attributes, "number")
	assert.NotContains(t, account.Attributes, "flag")
}

func TestLogin_DiscardsPresentedToken(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	f.sessions.Bind("stale-token", "old-account")

	payload, err := f.svc.Login(context.Background(), LoginInput{
		CallerAccountID: "platform-account",
		PresentedToken:  "stale-token",
	})

	require.NoError(t, err)
	assert.False(t, f.sessions.Has("stale-token"))
	assert.NotEqual(t, "stale-token", payload.ClientSessionID)
	_, ok := f.payloads.Stored("stale-token")
	assert.False(t, ok)
}

func TestLogin_ReplaysCachedPayloadForLiveSession(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)
	require.True(t, first.Extras.NewSession)

	createsBefore := f.directory.CreateCalls

	// The same token re-enters login, now resolved to the guest account.
	second, err := f.svc.Login(ctx, LoginInput{
		CallerAccountID: first.AccountID,
		PresentedToken:  first.ClientSessionID,
	})

	require.NoError(t, err)
	assert.Equal(t, first.ClientSessionID, second.ClientSessionID)
	assert.Equal(t, first.AccountID, second.AccountID)
	assert.False(t, second.Extras.NewSession)
	assert.Equal(t, createsBefore, f.directory.CreateCalls)

	// The cleared freshness flag is persisted, so it fires at most once.
	cached, ok := f.payloads.Stored(first.ClientSessionID)
	require.True(t, ok)
	assert.False(t, cached.Extras.NewSession)

	// The rewrite keeps the entry's remaining expiry; a replay must not
	// let the payload outlive its session.
	assert.Equal(t, ports.KeepTTL, f.payloads.LastPutTTL)

	third, err := f.svc.Login(ctx, LoginInput{
		CallerAccountID: first.AccountID,
		PresentedToken:  first.ClientSessionID,
	})
	require.NoError(t, err)
	assert.False(t, third.Extras.NewSession)
}

func TestLogin_ReplayDisabledProvisionsFresh(t *testing.T) {
	guest := testGuestConfig()
	guest.ReentrantReplay = false
	f := newLoginFixture(guest)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)

	second, err := f.svc.Login(ctx, LoginInput{
		CallerAccountID: first.AccountID,
		PresentedToken:  first.ClientSessionID,
	})

	require.NoError(t, err)
	assert.NotEqual(t, first.ClientSessionID, second.ClientSessionID)
	assert.False(t, f.sessions.Has(first.ClientSessionID))
}

func TestLogin_MissingCacheForLiveSessionFallsThrough(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()
	f.sessions.Bind("live-token", "guest-account")

	payload, err := f.svc.Login(ctx, LoginInput{
		CallerAccountID: "guest-account",
		PresentedToken:  "live-token",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "live-token", payload.ClientSessionID)
	assert.True(t, payload.Extras.NewSession)
}

func TestLogin_RejectedDomainFailsAuthorization(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	f.domains.Reject = true

	_, err := f.svc.Login(context.Background(), LoginInput{CallerAccountID: "platform-account"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrDomainNotAllowed)
	assert.Equal(t, 0, f.directory.CreateCalls)
	assert.Equal(t, 0, f.sessions.CreateCalls)
}

func TestProvisionAccount_ExistingEmailReusedWithoutDuplicate(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	first, err := f.svc.provisionAccount(ctx, "guest_fixed@kristasoft.com", nil)
	require.NoError(t, err)

	second, err := f.svc.provisionAccount(ctx, "guest_fixed@kristasoft.com", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.directory.CreateCalls)
}

func TestLogin_SessionStoreFailureWrapsAuthenticationError(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	f.sessions.CreateErr = errors.New("redis down")

	_, err := f.svc.Login(context.Background(), LoginInput{CallerAccountID: "platform-account"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLogin_AdminRoleMembershipSetsIsAdmin(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	adminRole, err := f.roles.GetOrCreate(ctx, "Workspace Admin")
	require.NoError(t, err)

	first, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)
	assert.False(t, first.IsAdmin)

	// Grant the admin role out of band and log in again as that account's
	// email by reusing provisioning internals via the directory.
	account, err := f.directory.GetByID(ctx, first.AccountID)
	require.NoError(t, err)
	account.RoleIDs = append(account.RoleIDs, adminRole.ID)
	f.directory.Add(account)

	payload, err := f.svc.buildPayload(ctx, account, "token")
	require.NoError(t, err)
	assert.True(t, payload.IsAdmin)
}

func TestPayload_ReturnsCachedEntry(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)

	payload, err := f.svc.Payload(ctx, first.ClientSessionID)
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, payload.AccountID)

	_, err = f.svc.Payload(ctx, "")
	assert.ErrorIs(t, err, ports.ErrPayloadNotFound)

	_, err = f.svc.Payload(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrPayloadNotFound)
}

func TestLogout_MissingTokenIsClientError(t *testing.T) {
	f := newLoginFixture(testGuestConfig())

	err := f.svc.Logout(context.Background(), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSessionID)
	assert.Equal(t, 0, f.sessions.DeleteCalls)
}

func TestLogout_IsIdempotent(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()
	f.sessions.Bind("token-1", "account-1")

	require.NoError(t, f.svc.Logout(ctx, "token-1"))
	assert.False(t, f.sessions.Has("token-1"))

	// A second logout with the same token is a no-op, not an error.
	require.NoError(t, f.svc.Logout(ctx, "token-1"))
}

func TestLogoutV1_DeletesSessionAndPayload(t *testing.T) {
	f := newLoginFixture(testGuestConfig())
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginInput{CallerAccountID: "platform-account"})
	require.NoError(t, err)

	require.NoError(t, f.svc.LogoutV1(ctx, first.ClientSessionID))
	assert.False(t, f.sessions.Has(first.ClientSessionID))
	_, ok := f.payloads.Stored(first.ClientSessionID)
	assert.False(t, ok)
}

func TestLogoutV1_AbsentTokenSkipsStores(t *testing.T) {
	f := newLoginFixture(testGuestConfig())

	require.NoError(t, f.svc.LogoutV1(context.Background(), ""))

	assert.Equal(t, 0, f.sessions.DeleteCalls)
	assert.Equal(t, 0, f.payloads.DeleteCalls)
}

func TestFormatTimestamp_UsesGMTLayout(t *testing.T) {
	ts := time.Date(2025, 1, 2, 15, 4, 5, 0, time.FixedZone("IST", 5*3600+1800))

	formatted := domainauth.FormatTimestamp(ts)

	assert.Equal(t, "2025-01-02T09:34:05 +0000", formatted)
}
