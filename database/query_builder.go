package database

import (
	"fmt"
	"strings"

	"median/models"
)

const (
	columnKind        = "kind"
	columnID          = "id"
	columnNamespaceID = "namespace_id"
	columnPosition    = "position"
	columnBody        = "body"
)

// documentColumns is the select list scanDocument expects.
var documentColumns = fmt.Sprintf("%s, %s, COALESCE(%s, ''), %s, %s",
	columnKind, columnID, columnNamespaceID, columnPosition, columnBody)

// QueryBuilder collects parameterized predicates over seed_documents.
// Column names come from the constants above; values only ever travel as
// positional arguments.
type QueryBuilder struct {
	predicates []string
	args       []any
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{predicates: []string{}, args: []any{}}
}

// bind records value and returns its placeholder.
func (qb *QueryBuilder) bind(value any) string {
	qb.args = append(qb.args, value)
	return fmt.Sprintf("$%d", len(qb.args))
}

func (qb *QueryBuilder) AddCondition(column string, value any) {
	qb.predicates = append(qb.predicates, column+" = "+qb.bind(value))
}

// AddIn matches column against any of values. An empty list adds nothing.
func (qb *QueryBuilder) AddIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	qb.predicates = append(qb.predicates, fmt.Sprintf("%s = ANY(%s)", column, qb.bind(values)))
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.predicates) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.predicates, " AND ")
}

// Paginate binds a clamped limit and offset and returns the LIMIT/OFFSET
// clause. Call it after every predicate has been added.
func (qb *QueryBuilder) Paginate(limit, offset int) string {
	limitArg := qb.bind(models.ClampLimit(limit))
	offsetArg := qb.bind(models.ClampOffset(offset))
	return fmt.Sprintf("LIMIT %s OFFSET %s", limitArg, offsetArg)
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}
