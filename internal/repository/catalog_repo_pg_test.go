package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewCatalogRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewCatalogRepository(pool)
	assert.NotNil(t, repo)
}
