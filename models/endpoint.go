package models

import "slices"

// ResponseShape says whether an endpoint returns one object or a list.
type ResponseShape string

const (
	ShapeObject ResponseShape = "object"
	ShapeList   ResponseShape = "list"
)

// HTTP methods an endpoint may use.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// PathParam describes one {name} segment of an endpoint path.
type PathParam struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// Endpoint is one generated API route. PathParams always mirror the {name}
// tokens of Path.
type Endpoint struct {
	ID                   string        `json:"id" yaml:"id"`
	NamespaceID          string        `json:"namespace_id" yaml:"namespace_id"`
	Method               string        `json:"method" yaml:"method" binding:"required"`
	Path                 string        `json:"path" yaml:"path" binding:"required"`
	Description          string        `json:"description" yaml:"description"`
	TagID                string        `json:"tag_id,omitempty" yaml:"tag_id"`
	PathParams           []PathParam   `json:"path_params" yaml:"path_params"`
	QueryParamsObjectID  string        `json:"query_params_object_id,omitempty" yaml:"query_params_object_id"`
	RequestBodyObjectID  string        `json:"request_body_object_id,omitempty" yaml:"request_body_object_id"`
	ResponseBodyObjectID string        `json:"response_body_object_id,omitempty" yaml:"response_body_object_id"`
	UseEnvelope          bool          `json:"use_envelope" yaml:"use_envelope"`
	ResponseShape        ResponseShape `json:"response_shape" yaml:"response_shape"`

	Ownership `yaml:",inline"`
}

// Clone returns a deep copy of e.
func (e Endpoint) Clone() Endpoint {
	e.PathParams = slices.Clone(e.PathParams)
	return e
}

// Label is the human name of an endpoint, e.g. "GET /users/{id}".
func (e Endpoint) Label() string {
	return e.Method + " " + e.Path
}

// ObjectIDs lists the objects this endpoint references, skipping blanks.
func (e Endpoint) ObjectIDs() []string {
	ids := make([]string, 0, 3)
	for _, id := range []string{e.QueryParamsObjectID, e.RequestBodyObjectID, e.ResponseBodyObjectID} {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
