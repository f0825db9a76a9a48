package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"median/models"
)

func TestQueryBuilder_Empty(t *testing.T) {
	qb := NewQueryBuilder()

	assert.Equal(t, "", qb.WhereClause())
	assert.Empty(t, qb.Args())
}

func TestQueryBuilder_AddCondition(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition("namespace_id", "global")

	assert.Equal(t, "WHERE namespace_id = $1", qb.WhereClause())
	assert.Equal(t, []any{"global"}, qb.Args())
}

func TestQueryBuilder_AddIn(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddIn("kind", nil)
	assert.Equal(t, "", qb.WhereClause(), "empty lists add no condition")

	qb.AddIn("kind", []string{"field", "object"})
	qb.AddCondition("namespace_id", "global")

	assert.Equal(t, "WHERE kind = ANY($1) AND namespace_id = $2", qb.WhereClause())
	assert.Equal(t, []any{[]string{"field", "object"}, "global"}, qb.Args())
}

func TestQueryBuilder_Paginate(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "passes through", limit: 20, offset: 40, wantLimit: 20, wantOffset: 40},
		{name: "defaults zero limit", limit: 0, offset: 0, wantLimit: models.DefaultLimit, wantOffset: 0},
		{name: "caps limit", limit: 5000, offset: 0, wantLimit: models.MaxLimit, wantOffset: 0},
		{name: "clamps negative offset", limit: 10, offset: -3, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb := NewQueryBuilder()
			qb.AddCondition("namespace_id", "global")

			clause := qb.Paginate(tt.limit, tt.offset)

			assert.Equal(t, "LIMIT $2 OFFSET $3", clause)
			assert.Equal(t, []any{"global", tt.wantLimit, tt.wantOffset}, qb.Args())
		})
	}
}
