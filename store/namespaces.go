package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"median/models"
	"median/refcheck"
)

// ListNamespaces returns all namespaces, global first.
func (s *Store) ListNamespaces() []models.Namespace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Namespace{}, s.namespaces...)
}

// GetNamespace returns one namespace.
func (s *Store) GetNamespace(id string) (models.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.namespaceIndex(id)
	if i < 0 {
		return models.Namespace{}, notFound(KindNamespace, id)
	}
	return s.namespaces[i], nil
}

// CreateNamespace adds an unlocked namespace.
func (s *Store) CreateNamespace(ns models.Namespace) (models.Namespace, error) {
	ns.Name = strings.TrimSpace(ns.Name)
	ns.Locked = false

	s.mu.Lock()
	if err := s.validateNamespace(ns, ""); err != nil {
		s.mu.Unlock()
		return models.Namespace{}, err
	}
	ns.ID = s.ids.Next(prefixNamespace)
	s.namespaces = append(s.namespaces, ns)
	s.mu.Unlock()

	s.logger.Info("namespace created", zap.String("id", ns.ID), zap.String("name", ns.Name))
	s.publish(KindNamespace, OpCreated, ns.ID, ns.ID)
	return ns, nil
}

// UpdateNamespace replaces name and description. Locked namespaces return
// ErrLocked.
func (s *Store) UpdateNamespace(ns models.Namespace) (models.Namespace, error) {
	ns.Name = strings.TrimSpace(ns.Name)

	s.mu.Lock()
	i := s.namespaceIndex(ns.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.Namespace{}, notFound(KindNamespace, ns.ID)
	}
	if s.namespaces[i].Locked {
		s.mu.Unlock()
		return models.Namespace{}, fmt.Errorf("namespace %q: %w", s.namespaces[i].Name, ErrLocked)
	}
	if err := s.validateNamespace(ns, ns.ID); err != nil {
		s.mu.Unlock()
		return models.Namespace{}, err
	}
	ns.Locked = false
	s.namespaces[i] = ns
	s.mu.Unlock()

	s.logger.Info("namespace updated", zap.String("id", ns.ID))
	s.publish(KindNamespace, OpUpdated, ns.ID, ns.ID)
	return ns, nil
}

// NamespaceReferences lists everything defined inside a namespace.
func (s *Store) NamespaceReferences(id string) (refcheck.Target, []refcheck.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.namespaceIndex(id)
	if i < 0 {
		return refcheck.Target{}, nil, notFound(KindNamespace, id)
	}
	return s.namespaceRefsLocked(s.namespaces[i])
}

func (s *Store) namespaceRefsLocked(ns models.Namespace) (refcheck.Target, []refcheck.Reference, error) {
	target := refcheck.Target{Kind: KindNamespace, Name: ns.Name, NamespaceID: ns.ID}

	var refs []refcheck.Reference
	for _, f := range s.fields {
		if f.NamespaceID == ns.ID {
			refs = append(refs, refcheck.Reference{ID: f.ID, Name: f.Name, Kind: KindField, NamespaceID: ns.ID})
		}
	}
	for _, o := range s.objects {
		if o.NamespaceID == ns.ID {
			refs = append(refs, refcheck.Reference{ID: o.ID, Name: o.Name, Kind: KindObject, NamespaceID: ns.ID})
		}
	}
	for _, e := range s.endpoints {
		if e.NamespaceID == ns.ID {
			refs = append(refs, refcheck.Reference{ID: e.ID, Name: e.Label(), Kind: KindEndpoint, NamespaceID: ns.ID})
		}
	}
	return target, refs, nil
}

// DeleteNamespace removes an empty, unlocked namespace. A blocked deletion
// is reported in the result, not as an error.
func (s *Store) DeleteNamespace(id string) (refcheck.Result, error) {
	s.mu.Lock()
	i := s.namespaceIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Namespace %q not found", id)), notFound(KindNamespace, id)
	}
	ns := s.namespaces[i]
	if ns.Locked {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Cannot delete namespace %q: it is locked", ns.Name)),
			fmt.Errorf("namespace %q: %w", ns.Name, ErrLocked)
	}
	target, refs, _ := s.namespaceRefsLocked(ns)
	result := refcheck.Check(target, refs)
	if !result.Success {
		s.mu.Unlock()
		return result, nil
	}
	s.namespaces = append(s.namespaces[:i], s.namespaces[i+1:]...)
	s.mu.Unlock()

	s.logger.Info("namespace deleted", zap.String("id", id))
	s.publish(KindNamespace, OpDeleted, id, id)
	return result, nil
}

func (s *Store) validateNamespace(ns models.Namespace, selfID string) error {
	verr := &ValidationError{}
	if ns.Name == "" {
		verr.add("name", "Name is required")
	}
	for _, other := range s.namespaces {
		if other.ID != selfID && strings.EqualFold(other.Name, ns.Name) {
			verr.add("name", fmt.Sprintf("A namespace named %q already exists", other.Name))
		}
	}
	return verr.err()
}

// requireNamespace records an error when id names no namespace.
func (s *Store) requireNamespace(verr *ValidationError, id string) {
	if s.namespaceIndex(id) < 0 {
		verr.add("namespace_id", fmt.Sprintf("Namespace %q does not exist", id))
	}
}
