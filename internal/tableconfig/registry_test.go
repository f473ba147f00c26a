package tableconfig_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/internal/tableconfig"
)

func TestRegistry_GetUnknownTableReturnsDefault(t *testing.T) {
	t.Parallel()

	r := tableconfig.NewRegistry()
	cfg := r.Get("never_registered")

	assert.Equal(t, tableconfig.DefaultDeepPaginationThreshold, cfg.DeepPaginationThreshold)
	assert.Equal(t, "created_at", cfg.DefaultSortField)
	assert.True(t, cfg.IsSortAllowed("id"))
	assert.True(t, cfg.IsSortAllowed("created_at"))
	assert.False(t, cfg.IsSortAllowed("evil_field"))
	assert.False(t, cfg.HasFullText())
	assert.False(t, cfg.IsCursorField("id"))
}

func TestRegistry_SetMergesOverDefault(t *testing.T) {
	t.Parallel()

	r := tableconfig.NewRegistry()
	r.Set("articles", tableconfig.Config{
		CursorFields:   []string{"created_at"},
		FullTextFields: []string{"title"},
	})

	cfg := r.Get("articles")
	assert.True(t, cfg.IsCursorField("created_at"))
	assert.True(t, cfg.HasFullText())
	// Fields not present in the update keep their defaults.
	assert.Equal(t, tableconfig.DefaultDeepPaginationThreshold, cfg.DeepPaginationThreshold)
	assert.Equal(t, "created_at", cfg.DefaultSortField)
}

func TestRegistry_SetMergesOverExisting(t *testing.T) {
	t.Parallel()

	r := tableconfig.NewRegistry()
	r.Set("articles", tableconfig.Config{
		SortIndexes: map[string]map[string]string{
			"created_at": {"DESC": "idx_created_desc"},
		},
		DeepPaginationThreshold: 5000,
	})
	r.Set("articles", tableconfig.Config{
		SortIndexes: map[string]map[string]string{
			"created_at": {"ASC": "idx_created_asc"},
		},
	})

	cfg := r.Get("articles")
	assert.Equal(t, "idx_created_desc", cfg.IndexFor("created_at", "DESC"))
	assert.Equal(t, "idx_created_asc", cfg.IndexFor("created_at", "ASC"))
	assert.Equal(t, 5000, cfg.DeepPaginationThreshold)
}

func TestRegistry_SetAll(t *testing.T) {
	t.Parallel()

	r := tableconfig.NewRegistry()
	r.SetAll(map[string]tableconfig.Config{
		"articles": {AllowedSortFields: []string{"id", "published_at"}},
		"notices":  {SoftDelete: true},
	})

	assert.True(t, r.Get("articles").IsSortAllowed("published_at"))
	assert.False(t, r.Get("articles").IsSortAllowed("created_at"))
	assert.True(t, r.Get("notices").SoftDelete)
	assert.ElementsMatch(t, []string{"articles", "notices"}, r.Tables())
}

// Writers merging while readers query must not race or crash. Run with -race.
func TestRegistry_ConcurrentReadWrite(t *testing.T) {
	t.Parallel()

	r := tableconfig.NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Set("articles", tableconfig.Config{DeepPaginationThreshold: 1000 + j})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := r.Get("articles")
				if cfg.DefaultSortField == "" {
					t.Error("torn read: empty default sort field")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRegistry_LoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tables.yaml")
	yamlBody := `
articles:
  sort_indexes:
    created_at:
      DESC: idx_articles_created_desc
  cursor_fields: [created_at, id]
  deep_pagination_threshold: 10000
  allowed_sort_fields: [id, created_at, view_count]
  full_text_fields: [title]
  static_conditions: ["is_deleted = 0"]
  soft_delete: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	r := tableconfig.NewRegistry()
	require.NoError(t, r.LoadFile(path))

	cfg := r.Get("articles")
	assert.Equal(t, "idx_articles_created_desc", cfg.IndexFor("created_at", "DESC"))
	assert.True(t, cfg.IsCursorField("created_at"))
	assert.True(t, cfg.IsSortAllowed("view_count"))
	assert.True(t, cfg.HasFullText())
	assert.Equal(t, []string{"is_deleted = 0"}, cfg.StaticConditions)
	assert.True(t, cfg.SoftDelete)
}

func TestRegistry_LoadFileMissing(t *testing.T) {
	t.Parallel()

	r := tableconfig.NewRegistry()
	err := r.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
