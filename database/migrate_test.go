package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationNames(t *testing.T) {
	names, err := MigrationNames()

	assert.NoError(t, err)
	assert.Equal(t, []string{"001_create_seed_documents.sql"}, names)
}
