package models

// Category groups types and validators for compatibility checks.
type Category string

const (
	CategoryString     Category = "string"
	CategoryNumeric    Category = "numeric"
	CategoryCollection Category = "collection"
)

// Valid reports whether c is a known validator category.
func (c Category) Valid() bool {
	switch c {
	case CategoryString, CategoryNumeric, CategoryCollection:
		return true
	}
	return false
}

// TypeDef is a built-in field type such as str or int.
// Types without a category accept no validators.
type TypeDef struct {
	Name         string   `json:"name" yaml:"name"`
	PythonType   string   `json:"python_type" yaml:"python_type"`
	Description  string   `json:"description" yaml:"description"`
	Category     Category `json:"category,omitempty" yaml:"category"`
	UsedInFields int      `json:"used_in_fields" yaml:"-"`
}

// Clone returns a copy of t.
func (t TypeDef) Clone() TypeDef {
	return t
}
