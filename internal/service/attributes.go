package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kristasoft/guestauth/internal/ports"
)

// AttributeOptions groups dependencies for AttributeService.
type AttributeOptions struct {
	Directory ports.AccountDirectory
	Catalog   ports.AttributeCatalog
	Logger    *slog.Logger
}

// AttributeService validates and applies person attribute updates.
type AttributeService struct {
	directory ports.AccountDirectory
	catalog   ports.AttributeCatalog
	logger    *slog.Logger
}

// NewAttributeService constructs a new AttributeService.
func NewAttributeService(opts AttributeOptions) *AttributeService {
	return &AttributeService{
		directory: opts.Directory,
		catalog:   opts.Catalog,
		logger:    opts.Logger,
	}
}

func (s *AttributeService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Upsert overwrites account attributes. All names are validated against
// the tenant catalog before any write, so a rejection leaves the account
// untouched. A nil value is a skip, not a deletion.
func (s *AttributeService) Upsert(ctx context.Context, accountID string, attrs map[string]*string) error {
	if len(attrs) == 0 {
		return nil
	}

	if err := s.validateNames(ctx, attrs); err != nil {
		return err
	}

	// Deterministic write order keeps retries and logs predictable.
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := attrs[name]
		if value == nil {
			continue
		}
		if err := s.directory.UpdateAttribute(ctx, accountID, name, *value); err != nil {
			return fmt.Errorf("upsert attribute %q: %w", name, err)
		}
		s.log().InfoContext(ctx, "attribute updated",
			slog.String("account_id", accountID),
			slog.String("attribute", name))
	}
	return nil
}

func (s *AttributeService) validateNames(ctx context.Context, attrs map[string]*string) error {
	known, err := s.catalog.Known(ctx)
	if err != nil {
		return fmt.Errorf("load attribute catalog: %w", err)
	}

	var unknown []string
	for name := range attrs {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return &UnknownAttributeError{Names: unknown}
	}
	return nil
}
