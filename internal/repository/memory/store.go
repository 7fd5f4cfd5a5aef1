// Package memory is an in-process store driver. It mirrors the constraints
// of the postgres schema so services behave the same on either driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/database"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

type userRow struct {
	user.User
	seq int64
}

type snapshot struct {
	companies  map[string]company.Company
	categories []company.ExpenseCategory
	users      map[string]userRow
	emails     map[string]string
	seq        int64
}

// Store holds every table. Transactions are serialized; reads outside a
// transaction may observe rows it has not committed yet.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data snapshot
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: snapshot{
			companies: make(map[string]company.Company),
			users:     make(map[string]userRow),
			emails:    make(map[string]string),
		},
		now: time.Now,
	}
}

type txKey struct{}

// WithinTransaction implements database.Transactor. A failing fn restores
// every table to its state before the call.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	saved := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write runs fn under the write lock. Outside a transaction it also waits
// for any open transaction to finish.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

func (d snapshot) clone() snapshot {
	c := snapshot{
		companies:  make(map[string]company.Company, len(d.companies)),
		categories: append([]company.ExpenseCategory(nil), d.categories...),
		users:      make(map[string]userRow, len(d.users)),
		emails:     make(map[string]string, len(d.emails)),
		seq:        d.seq,
	}
	for k, v := range d.companies {
		c.companies[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.emails {
		c.emails[k] = v
	}
	return c
}

// Counts reports table sizes.
func (s *Store) Counts() (companies, categories, users int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.companies), len(s.data.categories), len(s.data.users)
}

// CategoriesOf returns the seeded categories of a company in insertion order.
func (s *Store) CategoriesOf(companyID string) []company.ExpenseCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []company.ExpenseCategory
	for _, c := range s.data.categories {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out
}

func newID() string {
	return uuid.NewString()
}

type column struct {
	value string
	width int
}

// fits mirrors the VARCHAR widths of the schema.
func fits(columns ...column) error {
	for _, c := range columns {
		if validator.TooLong(c.value, c.width) {
			return database.ErrValueTooLong
		}
	}
	return nil
}
