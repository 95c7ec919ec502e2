package humastar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relsOf(links []string) map[string]string {
	rels := make(map[string]string)
	for _, l := range links {
		parts := strings.SplitN(l, `; rel="`, 2)
		if len(parts) != 2 {
			continue
		}
		href := strings.Trim(parts[0], "<>")
		rel := strings.TrimSuffix(parts[1], `"`)
		rels[rel] = href
	}
	return rels
}

func TestPaginationLinks_middlePage(t *testing.T) {
	p := PageBody[int]{Total: 100, Offset: 40, Limit: 20}
	rels := relsOf(p.PaginationLinks("/api/v1/features"))

	assert.Equal(t, "/api/v1/features?offset=0&limit=20", rels["first"])
	assert.Equal(t, "/api/v1/features?offset=20&limit=20", rels["prev"])
	assert.Equal(t, "/api/v1/features?offset=60&limit=20", rels["next"])
	assert.Equal(t, "/api/v1/features?offset=80&limit=20", rels["last"])
}

func TestPaginationLinks_firstPage(t *testing.T) {
	p := PageBody[int]{Total: 100, Offset: 0, Limit: 20}
	rels := relsOf(p.PaginationLinks("/api/v1/features"))

	assert.NotContains(t, rels, "prev")
	assert.Equal(t, "/api/v1/features?offset=20&limit=20", rels["next"])
}

func TestPaginationLinks_lastPage(t *testing.T) {
	p := PageBody[int]{Total: 100, Offset: 80, Limit: 20}
	rels := relsOf(p.PaginationLinks("/api/v1/features"))

	assert.NotContains(t, rels, "next")
	assert.Equal(t, "/api/v1/features?offset=60&limit=20", rels["prev"])
	assert.Equal(t, "/api/v1/features?offset=80&limit=20", rels["last"])
}

func TestPaginationLinks_prevClampsToZero(t *testing.T) {
	p := PageBody[int]{Total: 50, Offset: 10, Limit: 20}
	rels := relsOf(p.PaginationLinks("/x"))

	assert.Equal(t, "/x?offset=0&limit=20", rels["prev"])
}

func TestPaginationLinks_empty(t *testing.T) {
	p := PageBody[int]{Total: 0, Offset: 0, Limit: 20}
	rels := relsOf(p.PaginationLinks("/x"))

	require.Contains(t, rels, "first")
	require.Contains(t, rels, "last")
	assert.Equal(t, "/x?offset=0&limit=20", rels["last"])
	assert.NotContains(t, rels, "next")
	assert.NotContains(t, rels, "prev")
}
