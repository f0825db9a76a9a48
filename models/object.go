package models

import "slices"

// ObjectField places a field in an object.
type ObjectField struct {
	FieldID  string `json:"field_id" yaml:"field_id"`
	Required bool   `json:"required" yaml:"required"`
}

// ObjectDefinition is a named composition of fields, used as request,
// response or query-parameter schema. Field references that no longer
// resolve are kept and reported, never repaired.
type ObjectDefinition struct {
	ID          string        `json:"id" yaml:"id"`
	NamespaceID string        `json:"namespace_id" yaml:"namespace_id"`
	Name        string        `json:"name" yaml:"name" binding:"required,min=1,max=255"`
	Description string        `json:"description" yaml:"description"`
	Fields      []ObjectField `json:"fields" yaml:"fields"`

	Ownership `yaml:",inline"`

	// Derived on read.
	UsedInApis []string `json:"used_in_apis" yaml:"-"`
}

// Clone returns a deep copy of o.
func (o ObjectDefinition) Clone() ObjectDefinition {
	o.Fields = slices.Clone(o.Fields)
	o.UsedInApis = slices.Clone(o.UsedInApis)
	return o
}

// FieldIDs lists the referenced field ids in order.
func (o ObjectDefinition) FieldIDs() []string {
	ids := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		ids[i] = f.FieldID
	}
	return ids
}
