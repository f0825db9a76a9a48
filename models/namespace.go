package models

// GlobalNamespaceID is the locked namespace every installation starts with.
const GlobalNamespaceID = "global"

// Namespace is a soft partition for otherwise global entity names.
// The global namespace is locked: it can be neither edited nor deleted.
type Namespace struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" yaml:"description"`
	Locked      bool   `json:"locked" yaml:"locked"`
}

// Clone returns a copy of n.
func (n Namespace) Clone() Namespace {
	return n
}

// EndpointTag groups endpoints in generated docs.
type EndpointTag struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" yaml:"description"`
}

// Clone returns a copy of t.
func (t EndpointTag) Clone() EndpointTag {
	return t
}
