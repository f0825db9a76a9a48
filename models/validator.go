package models

import "slices"

// ValidatorKind tells built-in constraint checks from user-authored ones.
type ValidatorKind string

const (
	ValidatorInline ValidatorKind = "inline"
	ValidatorCustom ValidatorKind = "custom"
)

// FieldUsage points at a field that uses a validator.
type FieldUsage struct {
	FieldID     string `json:"field_id"`
	FieldName   string `json:"field_name"`
	NamespaceID string `json:"namespace_id"`
}

// Validator is a reusable validation rule, identified by its globally
// unique name.
type Validator struct {
	Name            string        `json:"name" yaml:"name" binding:"required,min=1,max=255"`
	Category        Category      `json:"category" yaml:"category" binding:"required"`
	Type            ValidatorKind `json:"type" yaml:"type"`
	Description     string        `json:"description" yaml:"description"`
	ParameterType   string        `json:"parameter_type" yaml:"parameter_type"`
	ExampleUsage    string        `json:"example_usage" yaml:"example_usage"`
	PydanticDocsURL string        `json:"pydantic_docs_url" yaml:"pydantic_docs_url"`

	Ownership `yaml:",inline"`

	// Derived on read.
	UsedInFields         int          `json:"used_in_fields" yaml:"-"`
	FieldsUsingValidator []FieldUsage `json:"fields_using_validator" yaml:"-"`
}

// Clone returns a deep copy of v.
func (v Validator) Clone() Validator {
	v.FieldsUsingValidator = slices.Clone(v.FieldsUsingValidator)
	return v
}
