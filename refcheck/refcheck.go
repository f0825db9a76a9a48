package refcheck

import (
	"fmt"
	"strings"
)

const (
	// messageNameLimit is how many blocking entities a deletion message names.
	messageNameLimit = 3
	// tooltipListLimit is the longest list a tooltip renders in full.
	tooltipListLimit = 5
	// tooltipTruncated is how many entries a truncated tooltip shows.
	tooltipTruncated = 4
)

// Target identifies the entity a caller wants to delete.
type Target struct {
	Kind        string // "field", "validator", "object", ...
	Name        string
	NamespaceID string
}

// Reference is one entity that depends on a deletion target.
type Reference struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	NamespaceID string `json:"namespace_id,omitempty"`
}

// Result is the outcome of a deletion check. A blocked result carries a
// user-facing message plus the machine-usable list of blocking references.
type Result struct {
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// Allowed is the result for a deletion with nothing in the way.
func Allowed() Result {
	return Result{Success: true}
}

// Failed is a non-reference failure, e.g. a missing or locked target.
func Failed(message string) Result {
	return Result{Success: false, Error: message}
}

type options struct {
	namespaceID string
	scoped      bool
}

// Option tunes a Check call.
type Option func(*options)

// WithNamespace restricts blocking references to those living in namespaceID.
// Usages from other namespaces are ignored.
func WithNamespace(namespaceID string) Option {
	return func(o *options) {
		o.namespaceID = namespaceID
		o.scoped = true
	}
}

// Check decides whether target can be deleted given the entities that might
// reference it.
func Check(target Target, refs []Reference, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	blocking := refs
	if o.scoped {
		blocking = make([]Reference, 0, len(refs))
		for _, ref := range refs {
			if ref.NamespaceID == o.namespaceID {
				blocking = append(blocking, ref)
			}
		}
	}

	if len(blocking) == 0 {
		return Allowed()
	}

	return Result{
		Success:    false,
		Error:      Message(target, blocking),
		References: append([]Reference(nil), blocking...),
	}
}

// Message explains why target cannot be deleted. It quotes up to three
// blocking entities and always states the exact count.
func Message(target Target, refs []Reference) string {
	names := make([]string, 0, messageNameLimit)
	for i, ref := range refs {
		if i == messageNameLimit {
			break
		}
		names = append(names, fmt.Sprintf("%q", ref.Name))
	}

	listed := strings.Join(names, ", ")
	if extra := len(refs) - len(names); extra > 0 {
		listed = fmt.Sprintf("%s and %d more", listed, extra)
	}

	return fmt.Sprintf("Cannot delete %s %q: it is used by %s: %s.",
		target.Kind, target.Name, Pluralize(len(refs), nounFor(refs)), listed)
}

// Tooltip renders the blocking list for hover UI. One reference is shown
// inline, up to five as bullets, and longer lists are truncated to four.
func Tooltip(refs []Reference) string {
	if len(refs) == 0 {
		return ""
	}

	noun := nounFor(refs)
	if len(refs) == 1 {
		return fmt.Sprintf("Used in %s (%s)", Pluralize(1, noun), refs[0].Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Used in %s:", Pluralize(len(refs), noun))

	shown := refs
	if len(refs) > tooltipListLimit {
		shown = refs[:tooltipTruncated]
	}
	for _, ref := range shown {
		b.WriteString("\n• ")
		b.WriteString(ref.Name)
	}
	if extra := len(refs) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "\n• and %d more...", extra)
	}

	return b.String()
}

// Pluralize renders "1 object" / "3 objects".
func Pluralize(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural(singular))
}

func plural(word string) string {
	switch {
	case strings.HasSuffix(word, "y") && !strings.HasSuffix(word, "ey"):
		return strings.TrimSuffix(word, "y") + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"):
		return word + "es"
	default:
		return word + "s"
	}
}

// nounFor picks the noun describing refs: their shared kind, or "entity"
// when kinds are mixed.
func nounFor(refs []Reference) string {
	if len(refs) == 0 {
		return "entity"
	}
	kind := refs[0].Kind
	for _, ref := range refs[1:] {
		if ref.Kind != kind {
			return "entity"
		}
	}
	if kind == "" {
		return "entity"
	}
	return kind
}
