package bootstrap

import (
	"database/sql"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kristasoft/guestauth/config"
	redisadapter "github.com/kristasoft/guestauth/internal/adapters/redis"
	"github.com/kristasoft/guestauth/internal/data"
	"github.com/kristasoft/guestauth/internal/service"
)

// ServiceDeps contains the shared dependencies services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Login      *service.LoginService
	Authn      *service.Authenticator
	Attributes *service.AttributeService
}

// NewServices wires repositories, adapters, and services explicitly.
func NewServices(deps *ServiceDeps) ServiceContainer {
	guest := deps.Config.Guest

	accounts := data.NewAccountRepo(deps.DB)
	roles := data.NewRoleRepo(deps.DB)
	domains := data.NewWorkspaceDomainRepo(deps.DB)
	domains.Restricted = guest.RestrictedDomains
	catalog := data.NewAttributeCatalogRepo(deps.DB)

	sessions := redisadapter.NewSessionStore(deps.RedisClient)
	payloads := redisadapter.NewPayloadCache(deps.RedisClient)

	authn := service.NewAuthenticator(service.AuthenticatorOptions{
		Sessions:            sessions,
		Directory:           accounts,
		PlatformAccountID:   guest.PlatformAccountID,
		AuthorizedAccountID: guest.AuthorizedAccountID,
		Logger:              deps.Logger,
	})

	login := service.NewLoginService(service.LoginOptions{
		Sessions:  sessions,
		Payloads:  payloads,
		Directory: accounts,
		Roles:     roles,
		Domains:   domains,
		Guest:     guest,
		Logger:    deps.Logger,
	})

	attributes := service.NewAttributeService(service.AttributeOptions{
		Directory: accounts,
		Catalog:   catalog,
		Logger:    deps.Logger,
	})

	return ServiceContainer{
		Login:      login,
		Authn:      authn,
		Attributes: attributes,
	}
}
