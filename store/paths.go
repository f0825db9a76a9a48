package store

import (
	"regexp"

	"median/models"
)

// pathParamPattern matches {name} segments in an endpoint path
var pathParamPattern = regexp.MustCompile(`\{([^{}/]*)\}`)

// PathParamNames lists the {name} tokens of path in order, including
// duplicates and empty names.
func PathParamNames(path string) []string {
	matches := pathParamPattern.FindAllStringSubmatch(path, -1)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// DerivePathParams returns one param per distinct token of path, in path
// order. Metadata of params already known by name is preserved; new params
// default to type "str".
func DerivePathParams(path string, existing []models.PathParam) []models.PathParam {
	known := make(map[string]models.PathParam, len(existing))
	for _, p := range existing {
		known[p.Name] = p
	}

	names := PathParamNames(path)
	params := make([]models.PathParam, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if p, ok := known[name]; ok {
			params = append(params, p)
			continue
		}
		params = append(params, models.PathParam{Name: name, Type: "str"})
	}
	return params
}
