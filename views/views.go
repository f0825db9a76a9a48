// Package views holds the list page definitions: how each entity is
// searched, filtered, sorted and edited. The HTTP handlers and the CLI
// share them.
package views

import (
	"errors"
	"fmt"
	"slices"

	"median/listview"
	"median/models"
	"median/refcheck"
	"median/store"

	"go.uber.org/zap"
)

// ErrReadOnly is returned by pages that do not support a mutation.
var ErrReadOnly = errors.New("read-only collection")

// Column is one table column.
type Column struct {
	Key   string
	Label string
}

// Page is everything a list page needs to know about one entity.
type Page[T any] struct {
	listview.Pipeline[T]

	// Entity is the plural route name, e.g. "fields".
	Entity string
	// Kind is the singular entity kind used in messages.
	Kind        string
	Columns     []Column
	DefaultSort listview.SortState
	// Namespaced pages accept a namespace filter on list and delete.
	Namespaced bool

	ID    func(T) string
	Label func(T) string
	Clone func(T) T
	Blank func() T

	// Owned and Stamp read and set who created an item. Pages without them
	// are shared by every caller.
	Owned func(T) models.Ownership
	Stamp func(T, models.Ownership) T

	List       func(namespaceID string) []T
	Get        func(id string) (T, error)
	Create     func(T) (T, error)
	Update     func(id string, item T) (T, error)
	Delete     func(id, namespaceFilter string) (refcheck.Result, error)
	References func(id string) (refcheck.Target, []refcheck.Reference, error)
}

// ReadOnly reports whether the page has no mutators.
func (p Page[T]) ReadOnly() bool {
	return p.Create == nil && p.Update == nil && p.Delete == nil
}

// Scoped returns p restricted to what scope may see. Items it cannot see
// read as not found; created items are stamped with scope, and updates
// keep the stored owner.
func (p Page[T]) Scoped(scope models.Scope) Page[T] {
	if p.Owned == nil {
		return p
	}
	visible := func(item T) bool { return p.Owned(item).VisibleTo(scope) }

	list, get := p.List, p.Get
	p.List = func(namespaceID string) []T {
		items := list(namespaceID)
		out := make([]T, 0, len(items))
		for _, item := range items {
			if visible(item) {
				out = append(out, item)
			}
		}
		return out
	}
	p.Get = func(id string) (T, error) {
		item, err := get(id)
		if err != nil {
			return item, err
		}
		if !visible(item) {
			var zero T
			return zero, fmt.Errorf("%s %q: %w", p.Kind, id, store.ErrNotFound)
		}
		return item, nil
	}

	if create := p.Create; create != nil {
		p.Create = func(item T) (T, error) {
			return create(p.Stamp(item, models.OwnedBy(scope)))
		}
	}
	if update := p.Update; update != nil {
		p.Update = func(id string, item T) (T, error) {
			stored, err := p.Get(id)
			if err != nil {
				return item, err
			}
			return update(id, p.Stamp(item, p.Owned(stored)))
		}
	}
	if del := p.Delete; del != nil {
		p.Delete = func(id, namespaceFilter string) (refcheck.Result, error) {
			if _, err := p.Get(id); err != nil {
				return refcheck.Failed(err.Error()), err
			}
			return del(id, namespaceFilter)
		}
	}
	if refs := p.References; refs != nil {
		p.References = func(id string) (refcheck.Target, []refcheck.Reference, error) {
			if _, err := p.Get(id); err != nil {
				return refcheck.Target{}, nil, err
			}
			return refs(id)
		}
	}
	return p
}

// Query runs the pipeline over the page's items, falling back to the
// default sort when q has none.
func (p Page[T]) Query(namespaceID string, q listview.Query) []listview.Row[T] {
	if len(q.Sorts) == 0 {
		q.Sorts = p.DefaultSort
	}
	return p.Run(p.List(namespaceID), q)
}

// ColumnKeys lists the column keys in display order.
func (p Page[T]) ColumnKeys() []string {
	keys := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		keys[i] = c.Key
	}
	return keys
}

// HasColumn reports whether key names a column or computed field.
func (p Page[T]) HasColumn(key string) bool {
	return slices.Contains(p.ColumnKeys(), key)
}

// Config builds a ListView configuration backed by the page's mutators.
// Navigate, Notify and Scheduler are left to the caller. Delete errors
// are logged to logger, which may be nil.
func (p Page[T]) Config(logger *zap.Logger) listview.Config[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := listview.Config[T]{
		Pipeline: p.Pipeline,
		Items:    func() []T { return p.List("") },
		Clone:    p.Clone,
		Label:    p.Label,
		Create:   p.Create,
	}
	if p.Update != nil {
		cfg.Update = func(item T) (T, error) { return p.Update(p.ID(item), item) }
	}
	if p.Delete != nil {
		cfg.Delete = func(item T) refcheck.Result {
			result, err := p.Delete(p.ID(item), "")
			if err != nil {
				logger.Warn("delete failed", zap.String("entity", p.Kind), zap.String("id", p.ID(item)), zap.Error(err))
				if result.Error == "" {
					result = refcheck.Failed(fmt.Sprintf("Could not delete %q: %v", p.Label(item), err))
				}
			}
			return result
		}
	}
	return cfg
}

func optionsOf(values []string) []listview.FilterOption {
	options := make([]listview.FilterOption, len(values))
	for i, v := range values {
		options[i] = listview.FilterOption{Value: v, Label: v}
	}
	return options
}
