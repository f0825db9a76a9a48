package store

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"median/models"
	"median/refcheck"
)

// ListEndpoints returns endpoints, optionally restricted to one namespace.
func (s *Store) ListEndpoints(namespaceID string) []models.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Endpoint, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		if namespaceID != "" && e.NamespaceID != namespaceID {
			continue
		}
		out = append(out, s.annotateEndpoint(e))
	}
	return out
}

// GetEndpoint returns one endpoint.
func (s *Store) GetEndpoint(id string) (models.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.endpointIndex(id)
	if i < 0 {
		return models.Endpoint{}, notFound(KindEndpoint, id)
	}
	return s.annotateEndpoint(s.endpoints[i]), nil
}

// CreateEndpoint adds an endpoint. Path params are rebuilt from the path.
func (s *Store) CreateEndpoint(e models.Endpoint) (models.Endpoint, error) {
	e = normalizeEndpoint(e)

	s.mu.Lock()
	if err := s.validateEndpoint(e, ""); err != nil {
		s.mu.Unlock()
		return models.Endpoint{}, err
	}
	e.ID = s.ids.Next(prefixEndpoint)
	s.endpoints = append(s.endpoints, e)
	out := s.annotateEndpoint(e)
	s.mu.Unlock()

	s.logger.Info("endpoint created", zap.String("id", e.ID), zap.String("route", e.Label()))
	s.publish(KindEndpoint, OpCreated, e.ID, e.NamespaceID)
	return out, nil
}

// UpdateEndpoint replaces the endpoint with the same id.
func (s *Store) UpdateEndpoint(e models.Endpoint) (models.Endpoint, error) {
	e = normalizeEndpoint(e)

	s.mu.Lock()
	i := s.endpointIndex(e.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.Endpoint{}, notFound(KindEndpoint, e.ID)
	}
	if err := s.validateEndpoint(e, e.ID); err != nil {
		s.mu.Unlock()
		return models.Endpoint{}, err
	}
	s.endpoints[i] = e
	out := s.annotateEndpoint(e)
	s.mu.Unlock()

	s.logger.Info("endpoint updated", zap.String("id", e.ID), zap.String("route", e.Label()))
	s.publish(KindEndpoint, OpUpdated, e.ID, e.NamespaceID)
	return out, nil
}

// DeleteEndpoint removes an endpoint. Nothing references endpoints, so the
// only failure is a missing id.
func (s *Store) DeleteEndpoint(id string) (refcheck.Result, error) {
	s.mu.Lock()
	i := s.endpointIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return refcheck.Failed(fmt.Sprintf("Endpoint %q not found", id)), notFound(KindEndpoint, id)
	}
	e := s.endpoints[i]
	s.endpoints = append(s.endpoints[:i], s.endpoints[i+1:]...)
	s.mu.Unlock()

	s.logger.Info("endpoint deleted", zap.String("id", id), zap.String("route", e.Label()))
	s.publish(KindEndpoint, OpDeleted, id, e.NamespaceID)
	return refcheck.Allowed(), nil
}

func normalizeEndpoint(e models.Endpoint) models.Endpoint {
	e = e.Clone()
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	e.Path = strings.TrimSpace(e.Path)
	if e.NamespaceID == "" {
		e.NamespaceID = models.GlobalNamespaceID
	}
	if e.ResponseShape == "" {
		e.ResponseShape = models.ShapeObject
	}
	e.PathParams = DerivePathParams(e.Path, e.PathParams)
	return e
}

func (s *Store) validateEndpoint(e models.Endpoint, selfID string) error {
	verr := &ValidationError{}

	if !slices.Contains(models.HTTPMethods, e.Method) {
		verr.add("method", fmt.Sprintf("Method must be one of %s", strings.Join(models.HTTPMethods, ", ")))
	}

	switch {
	case e.Path == "":
		verr.add("path", "Path is required")
	case !strings.HasPrefix(e.Path, "/"):
		verr.add("path", "Path must start with /")
	default:
		seen := map[string]bool{}
		for _, name := range PathParamNames(e.Path) {
			if name == "" {
				verr.add("path", "Path parameters need a name")
			} else if seen[name] {
				verr.add("path", fmt.Sprintf("Path parameter {%s} appears twice", name))
			}
			seen[name] = true
		}
	}

	s.requireNamespace(verr, e.NamespaceID)
	for _, other := range s.endpoints {
		if other.ID != selfID && other.NamespaceID == e.NamespaceID &&
			other.Method == e.Method && other.Path == e.Path {
			verr.add("path", fmt.Sprintf("%s already exists in this namespace", e.Label()))
		}
	}

	if e.TagID != "" && s.tagIndex(e.TagID) < 0 {
		verr.add("tag_id", fmt.Sprintf("Tag %q does not exist", e.TagID))
	}

	for key, id := range map[string]string{
		"query_params_object_id":  e.QueryParamsObjectID,
		"request_body_object_id":  e.RequestBodyObjectID,
		"response_body_object_id": e.ResponseBodyObjectID,
	} {
		if id != "" && s.objectIndex(id) < 0 {
			verr.add(key, fmt.Sprintf("Object %q does not exist", id))
		}
	}

	if e.ResponseShape != models.ShapeObject && e.ResponseShape != models.ShapeList {
		verr.add("response_shape", "Response shape must be object or list")
	}

	return verr.err()
}
