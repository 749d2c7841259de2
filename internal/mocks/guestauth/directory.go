package guestauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kristasoft/guestauth/internal/domain/model"
	"github.com/kristasoft/guestauth/internal/ports"
)

// MemoryAccountDirectory is an in-memory ports.AccountDirectory.
type MemoryAccountDirectory struct {
	mu       sync.Mutex
	byID     map[string]*model.Account
	byEmail  map[string]string
	seq      int

	CreateCalls int

	LookupErr error
	CreateErr error
}

// NewMemoryAccountDirectory creates an empty in-memory account directory.
func NewMemoryAccountDirectory() *MemoryAccountDirectory {
	return &MemoryAccountDirectory{
		byID:    make(map[string]*model.Account),
		byEmail: make(map[string]string),
	}
}

func (d *MemoryAccountDirectory) GetByID(_ context.Context, id string) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.byID[id]
	if !ok {
		return nil, ports.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (d *MemoryAccountDirectory) LookupByEmail(_ context.Context, email string) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LookupErr != nil {
		return nil, d.LookupErr
	}
	id, ok := d.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrAccountNotFound
	}
	return cloneAccount(d.byID[id]), nil
}

func (d *MemoryAccountDirectory) Create(_ context.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CreateCalls++
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Same behavior as the real directory: a create racing on email
	// resolves to the existing account.
	if id, ok := d.byEmail[req.Email]; ok {
		return cloneAccount(d.byID[id]), nil
	}

	d.seq++
	account := &model.Account{
		ID:          fmt.Sprintf("account-%d", d.seq),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PersonID:    fmt.Sprintf("person-%d", d.seq),
		InboxID:     fmt.Sprintf("inbox-%d", d.seq),
		Attributes:  cloneAttrs(req.Attributes),
		RoleIDs:     append([]string(nil), req.RoleIDs...),
		CreatedAt:   time.Now(),
	}
	d.byID[account.ID] = account
	d.byEmail[account.Email] = account.ID
	return cloneAccount(account), nil
}

func (d *MemoryAccountDirectory) UpdateAttribute(_ context.Context, accountID, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.byID[accountID]
	if !ok {
		return ports.ErrAccountNotFound
	}
	if account.Attributes == nil {
		account.Attributes = make(map[string]string)
	}
	account.Attributes[name] = value
	return nil
}

// Add seeds an account.
func (d *MemoryAccountDirectory) Add(account *model.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[account.ID] = account
	d.byEmail[model.NormalizeEmail(account.Email)] = account.ID
}

// Remove deletes an account, simulating external account deletion.
func (d *MemoryAccountDirectory) Remove(accountID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if account, ok := d.byID[accountID]; ok {
		delete(d.byEmail, account.Email)
		delete(d.byID, accountID)
	}
}

func cloneAccount(a *model.Account) *model.Account {
	out := *a
	out.Attributes = cloneAttrs(a.Attributes)
	out.RoleIDs = append([]string(nil), a.RoleIDs...)
	return &out
}

func cloneAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// MemoryRoleStore is an in-memory ports.RoleStore with get-or-create
// semantics keyed by name.
type MemoryRoleStore struct {
	mu     sync.Mutex
	byName map[string]*model.Role
	seq    int

	GetOrCreateCalls int
	GetOrCreateErr   error
}

// NewMemoryRoleStore creates an empty in-memory role store.
func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{byName: make(map[string]*model.Role)}
}

func (r *MemoryRoleStore) GetOrCreate(_ context.Context, name string) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetOrCreateCalls++
	if r.GetOrCreateErr != nil {
		return nil, r.GetOrCreateErr
	}
	if role, ok := r.byName[name]; ok {
		out := *role
		return &out, nil
	}
	r.seq++
	role := &model.Role{
		ID:        fmt.Sprintf("role-%d", r.seq),
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.byName[name] = role
	out := *role
	return &out, nil
}

func (r *MemoryRoleStore) List(_ context.Context) ([]*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Role, 0, len(r.byName))
	for _, role := range r.byName {
		copied := *role
		out = append(out, &copied)
	}
	return out, nil
}

// StaticDomainAllowlist accepts every domain unless Reject is set.
type StaticDomainAllowlist struct {
	mu sync.Mutex

	EnsureCalls int
	Reject      bool
	LastEmail   string
}

func (a *StaticDomainAllowlist) EnsureAllowed(_ context.Context, email string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.EnsureCalls++
	a.LastEmail = email
	if a.Reject {
		return fmt.Errorf("%w: %q", ports.ErrDomainNotAllowed, model.EmailDomain(email))
	}
	return nil
}

// StaticAttributeCatalog answers Known from a fixed name set.
type StaticAttributeCatalog struct {
	Names []string
	Err   error
}

func (c *StaticAttributeCatalog) Known(_ context.Context) (map[string]struct{}, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	known := make(map[string]struct{}, len(c.Names))
	for _, n := range c.Names {
		known[n] = struct{}{}
	}
	return known, nil
}
