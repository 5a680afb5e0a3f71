// Package tables keeps the configured table names of the venue.
package tables

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cafe-orders/internal/domain"
)

var (
	ErrBlankName = errors.New("table name is blank")
	ErrDuplicate = errors.New("table already exists")
)

// DefaultNames returns "1".."15".
func DefaultNames() []string {
	names := make([]string, 0, 15)
	for i := 1; i <= 15; i++ {
		names = append(names, strconv.Itoa(i))
	}
	return names
}

// Registry holds table names in natural order ("2" before "10") and treats
// names that differ only in case as the same table.
type Registry struct {
	mu    sync.Mutex
	coll  *collate.Collator
	names []string
}

func New(names ...string) (*Registry, error) {
	r := &Registry{coll: collate.New(language.Und, collate.Numeric, collate.IgnoreCase)}
	for _, n := range names {
		if err := r.Add(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (r *Registry) indexLocked(name string) int {
	k := fold(name)
	for i, n := range r.names {
		if fold(n) == k {
			return i
		}
	}
	return -1
}

func (r *Registry) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.names = append(r.names, name)
	sort.SliceStable(r.names, func(i, j int) bool {
		return r.coll.CompareString(r.names[i], r.names[j]) < 0
	})
	return nil
}

func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownTable, name)
	}
	r.names = append(r.names[:i], r.names[i+1:]...)
	return nil
}

// Resolve returns the stored spelling of name.
func (r *Registry) Resolve(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(name)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownTable, name)
	}
	return r.names[i], nil
}

func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
