package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"median/models"
	"median/refcheck"
)

// ListTags returns all endpoint tags.
func (s *Store) ListTags() []models.EndpointTag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EndpointTag{}, s.tags...)
}

// GetTag returns one tag.
func (s *Store) GetTag(id string) (models.EndpointTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.tagIndex(id)
	if i < 0 {
		return models.EndpointTag{}, notFound(KindTag, id)
	}
	return s.tags[i], nil
}

// CreateTag adds a tag.
func (s *Store) CreateTag(t models.EndpointTag) (models.EndpointTag, error) {
	t.Name = strings.TrimSpace(t.Name)

	s.mu.Lock()
	if err := s.validateTag(t, ""); err != nil {
		s.mu.Unlock()
		return models.EndpointTag{}, err
	}
	t.ID = s.ids.Next(prefixTag)
	s.tags = append(s.tags, t)
	s.mu.Unlock()

	s.logger.Info("tag created", zap.String("id", t.ID), zap.String("name", t.Name))
	s.publish(KindTag, OpCreated, t.ID, "")
	return t, nil
}

// UpdateTag replaces the tag with the same id.
func (s *Store) UpdateTag(t models.EndpointTag) (models.EndpointTag, error) {
	t.Name = strings.TrimSpace(t.Name)

	s.mu.Lock()
	i := s.tagIndex(t.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.EndpointTag{}, notFound(KindTag, t.ID)
	}
	if err := s.validateTag(t, t.ID); err != nil {
		s.mu.Unlock()
		return models.EndpointTag{}, err
	}
	s.tags[i] = t
	s.mu.Unlock()

	s.logger.Info("tag updated", zap.String("id", t.ID))
	s.publish(KindTag, OpUpdated, t.ID, "")
	return t, nil
}

// DeleteTag removes a tag and clears it from every endpoint carrying it.
func (s *Store) DeleteTag(id string) (refcheck.Result, error) {
	s.mu.Lock()
	i := s.tagIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Tag %q not found", id)), notFound(KindTag, id)
	}
	s.tags = append(s.tags[:i], s.tags[i+1:]...)

	var untagged []models.Endpoint
	for ei := range s.endpoints {
		if s.endpoints[ei].TagID == id {
			s.endpoints[ei].TagID = ""
			untagged = append(untagged, s.endpoints[ei])
		}
	}
	s.mu.Unlock()

	s.logger.Info("tag deleted", zap.String("id", id), zap.Int("untagged_endpoints", len(untagged)))
	s.publish(KindTag, OpDeleted, id, "")
	for _, e := range untagged {
		s.publish(KindEndpoint, OpUpdated, e.ID, e.NamespaceID)
	}
	return refcheck.Allowed(), nil
}

func (s *Store) validateTag(t models.EndpointTag, selfID string) error {
	verr := &ValidationError{}
	if t.Name == "" {
		verr.add("name", "Name is required")
	}
	for _, other := range s.tags {
		if other.ID != selfID && strings.EqualFold(other.Name, t.Name) {
			verr.add("name", fmt.Sprintf("A tag named %q already exists", other.Name))
		}
	}
	return verr.err()
}
