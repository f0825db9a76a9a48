package models

// Scope is the caller a read or write runs on behalf of.
type Scope struct {
	UserID    string
	AccountID string
}

// Ownership records who created an item. Items with neither id set are
// shared: seeded and built-in entries are visible to every caller.
type Ownership struct {
	OwnerID   string `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
}

// Shared reports whether o belongs to nobody in particular.
func (o Ownership) Shared() bool {
	return o.OwnerID == "" && o.AccountID == ""
}

// VisibleTo reports whether scope may read the item: it owns it, shares
// its account, or the item is shared.
func (o Ownership) VisibleTo(scope Scope) bool {
	if o.Shared() {
		return true
	}
	if scope.UserID != "" && o.OwnerID == scope.UserID {
		return true
	}
	return scope.AccountID != "" && o.AccountID == scope.AccountID
}

// OwnedBy returns the ownership a new item created by scope carries.
func OwnedBy(scope Scope) Ownership {
	return Ownership{OwnerID: scope.UserID, AccountID: scope.AccountID}
}
