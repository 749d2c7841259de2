package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kristasoft/guestauth/config"
	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	"github.com/kristasoft/guestauth/internal/domain/model"
	"github.com/kristasoft/guestauth/internal/ports"
)

// Fixed attributes stamped onto every provisioned guest account.
const (
	attrLastLogin = "KRISTA_LAST_LOGIN"
	attrOrg       = "ORG"
	attrSource    = "KRISTA_SOURCE"
	attrChannel   = "SOURCE"

	defaultOrg     = "KristaSoft"
	defaultSource  = "Omni Chatbot"
	defaultChannel = "OMNI"
)

// LoginOptions groups dependencies for LoginService.
type LoginOptions struct {
	Sessions  ports.SessionStore
	Payloads  ports.PayloadCache
	Directory ports.AccountDirectory
	Roles     ports.RoleStore
	Domains   ports.DomainAllowlist
	Guest     config.GuestConfig
	Logger    *slog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// LoginService synthesizes guest identities and issues sessions: it is
// the only writer of the session store / payload cache pair.
type LoginService struct {
	sessions  ports.SessionStore
	payloads  ports.PayloadCache
	directory ports.AccountDirectory
	roles     ports.RoleStore
	domains   ports.DomainAllowlist
	guest     config.GuestConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewLoginService constructs a new LoginService.
func NewLoginService(opts LoginOptions) *LoginService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &LoginService{
		sessions:  opts.Sessions,
		payloads:  opts.Payloads,
		directory: opts.Directory,
		roles:     opts.Roles,
		domains:   opts.Domains,
		guest:     opts.Guest,
		logger:    opts.Logger,
		now:       now,
	}
}

func (s *LoginService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// LoginInput carries the request facts the orchestrator needs.
type LoginInput struct {
	// CallerAccountID is the account the Authenticator resolved for this
	// request: an existing guest account when the presented session was
	// still live, the platform account otherwise.
	CallerAccountID string

	// PresentedToken is the session token from the chatbot cookie, empty
	// when none was presented.
	PresentedToken string

	// FromPlatformChannel is true when the request carried the platform
	// source header; it selects the guest email domain.
	FromPlatformChannel bool

	// CustomAttributes is the caller-supplied JSON object. Only non-blank
	// string values are kept; everything else is silently dropped.
	CustomAttributes map[string]any
}

// Login resolves or provisions a guest identity and returns the
// authentication payload. See the package doc for the full flow.
func (s *LoginService) Login(ctx context.Context, input LoginInput) (domainauth.AuthResponse, error) {
	// A live session re-entering login is answered from the cache:
	// the caller was authenticated as a real guest account, not as the
	// platform itself, so new state must not be created.
	if s.guest.ReentrantReplay && input.CallerAccountID != "" &&
		input.CallerAccountID != s.guest.PlatformAccountID {
		if payload, ok := s.replayCached(ctx, input.PresentedToken); ok {
			return payload, nil
		}
		s.log().ErrorContext(ctx, "no cached payload for live session; falling through to provisioning",
			slog.String("token", input.PresentedToken),
			slog.String("account_id", input.CallerAccountID))
	}

	// An old or foreign token must never be reused for a new identity.
	if input.PresentedToken != "" {
		if err := s.sessions.Delete(ctx, input.PresentedToken); err != nil {
			s.log().ErrorContext(ctx, "discard stale session failed", slog.Any("error", err))
		}
		if err := s.payloads.Delete(ctx, input.PresentedToken); err != nil {
			s.log().ErrorContext(ctx, "discard stale payload failed", slog.Any("error", err))
		}
	}

	email := s.guestEmail(input.FromPlatformChannel)
	if err := s.domains.EnsureAllowed(ctx, email); err != nil {
		return domainauth.AuthResponse{}, fmt.Errorf("validate guest domain: %w", err)
	}

	account, err := s.provisionAccount(ctx, email, input.CustomAttributes)
	if err != nil {
		return domainauth.AuthResponse{}, err
	}

	ttl := s.sessionTTL()
	token, err := s.sessions.Create(ctx, account.ID, ttl)
	if err != nil {
		return domainauth.AuthResponse{}, fmt.Errorf("%w: create session: %w", ErrAuthenticationFailed, err)
	}

	payload, err := s.buildPayload(ctx, account, token)
	if err != nil {
		return domainauth.AuthResponse{}, err
	}

	// Session and payload are written together; a live token always has a
	// cached payload once login completes.
	if err := s.payloads.Put(ctx, token, payload, ttl); err != nil {
		return domainauth.AuthResponse{}, fmt.Errorf("%w: cache payload: %w", ErrAuthenticationFailed, err)
	}

	s.log().InfoContext(ctx, "provisioned guest session",
		slog.String("account_id", account.ID),
		slog.String("email", account.Email))
	return payload, nil
}

// replayCached returns the cached payload for the token with the
// newSession flag cleared. The cleared copy is persisted so the freshness
// signal fires at most once.
func (s *LoginService) replayCached(ctx context.Context, token string) (domainauth.AuthResponse, bool) {
	if token == "" {
		return domainauth.AuthResponse{}, false
	}
	payload, err := s.payloads.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ports.ErrPayloadNotFound) {
			s.log().ErrorContext(ctx, "payload cache read failed", slog.Any("error", err))
		}
		return domainauth.AuthResponse{}, false
	}

	if payload.Extras.NewSession {
		// Rewrite in place: the payload must keep expiring with its
		// session, not gain a fresh TTL on every replay.
		payload.Extras.NewSession = false
		if err := s.payloads.Put(ctx, token, payload, ports.KeepTTL); err != nil {
			s.log().ErrorContext(ctx, "persist cleared newSession flag failed", slog.Any("error", err))
		}
	}
	return payload, true
}

// Payload returns the cached authentication payload for a live session
// token. ports.ErrPayloadNotFound is returned when the token has no
// cached payload.
func (s *LoginService) Payload(ctx context.Context, token string) (domainauth.AuthResponse, error) {
	if token == "" {
		return domainauth.AuthResponse{}, ports.ErrPayloadNotFound
	}
	return s.payloads.Get(ctx, token)
}

// Logout deletes the session binding. Deleting an absent session is not
// an error.
func (s *LoginService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingSessionID
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LogoutV1 deletes both the session binding and the cached payload. An
// absent token is a success with no store calls.
func (s *LoginService) LogoutV1(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.payloads.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete payload: %w", err)
	}
	return nil
}

// guestEmail synthesizes a locally-unique guest address. Platform-channel
// logins land on the platform domain, external ones on the default domain.
func (s *LoginService) guestEmail(fromPlatformChannel bool) string {
	domain := s.guest.DefaultDomain
	if fromPlatformChannel {
		domain = s.guest.PlatformDomain
	}
	return fmt.Sprintf("%s_%s@%s", s.guest.EmailPrefix, uuid.NewString(), domain)
}

// provisionAccount ensures the default role exists and looks up or
// creates the guest account. The lookup guards against retried requests;
// an existing account is reused as-is.
func (s *LoginService) provisionAccount(ctx context.Context, email string, custom map[string]any) (*model.Account, error) {
	role, err := s.roles.GetOrCreate(ctx, s.guest.DefaultRole)
	if err != nil {
		return nil, fmt.Errorf("%w: provision default role: %w", ErrAuthenticationFailed, err)
	}

	account, err := s.directory.LookupByEmail(ctx, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ports.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: lookup account: %w", ErrAuthenticationFailed, err)
	}

	account, err = s.directory.Create(ctx, &model.CreateAccountRequest{
		Email:       email,
		DisplayName: model.EmailLocalPart(email),
		RoleIDs:     []string{role.ID},
		Attributes:  s.buildAttributes(custom),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create account: %w", ErrAuthenticationFailed, err)
	}
	return account, nil
}

// buildAttributes merges the fixed markers, the last-login timestamp, and
// the string-valued caller attributes.
func (s *LoginService) buildAttributes(custom map[string]any) map[string]string {
	attrs := map[string]string{
		attrLastLogin: domainauth.FormatTimestamp(s.now()),
		attrOrg:       defaultOrg,
		attrSource:    defaultSource,
		attrChannel:   defaultChannel,
	}
	for name, value := range custom {
		str, ok := value.(string)
		if !ok || str == "" {
			continue
		}
		attrs[name] = str
	}
	return attrs
}

func (s *LoginService) buildPayload(ctx context.Context, account *model.Account, token string) (domainauth.AuthResponse, error) {
	isAdmin, err := s.hasAdminRole(ctx, account)
	if err != nil {
		return domainauth.AuthResponse{}, fmt.Errorf("%w: check admin role: %w", ErrAuthenticationFailed, err)
	}

	var avatarURL string
	if account.AvatarURL != nil {
		avatarURL = *account.AvatarURL
	}

	return domainauth.AuthResponse{
		ClientSessionID: token,
		PersonName:      account.DisplayName,
		AvatarURL:       avatarURL,
		AccountID:       account.ID,
		HostAccountID:   s.guest.PlatformAccountID,
		PersonID:        account.PersonID,
		Roles:           account.RoleIDs,
		InboxID:         account.InboxID,
		IsAdmin:         isAdmin,
		IsServiceCall:   false,
		Attributes:      map[string]string{"email": account.Email},
		Extras: domainauth.Extras{
			CreationTime: domainauth.FormatTimestamp(s.now()),
			NewSession:   true,
		},
	}, nil
}

// hasAdminRole reports whether the account holds the workspace admin role.
func (s *LoginService) hasAdminRole(ctx context.Context, account *model.Account) (bool, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Name == s.guest.AdminRole && account.HasRole(role.ID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *LoginService) sessionTTL() time.Duration {
	return time.Duration(s.guest.SessionTTLMinutes) * time.Minute
}
