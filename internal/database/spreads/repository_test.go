package spreads

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mvasilenko/spreadhub/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_spreads_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.ResourceSpread{},
		&entities.CraftSpread{},
	)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), cleanup
}

func seedRevision(t *testing.T, repo *Repository, projectID, revision string, activities int) {
	t.Helper()
	ctx := context.Background()

	var resources []entities.ResourceSpread
	var crafts []entities.CraftSpread
	for i := 1; i <= activities; i++ {
		activityID := fmt.Sprintf("A%03d", i)
		resources = append(resources, entities.ResourceSpread{
			ProjectID:     projectID,
			Revision:      revision,
			ActivityID:    activityID,
			ActivityName:  "Activity " + activityID,
			BudgetedUnits: float64(i * 10),
		})
		crafts = append(crafts,
			entities.CraftSpread{
				ProjectID: projectID, Revision: revision,
				ActivityID: activityID, ActivityName: "Activity " + activityID,
				Week: "5-July-25", Value: float64(i),
			},
			entities.CraftSpread{
				ProjectID: projectID, Revision: revision,
				ActivityID: activityID, ActivityName: "Activity " + activityID,
				Week: "12-July-25", Value: float64(i) * 2,
			},
		)
	}
	require.NoError(t, repo.PersistResources(ctx, resources))
	require.NoError(t, repo.PersistCrafts(ctx, crafts))
}

func TestPersist(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("empty slices are a no-op", func(t *testing.T) {
		assert.NoError(t, repo.PersistResources(ctx, nil))
		assert.NoError(t, repo.PersistCrafts(ctx, nil))
	})

	t.Run("persisted records come back with ids", func(t *testing.T) {
		resources := []entities.ResourceSpread{
			{ProjectID: "PRJ-1", Revision: "20250705100000", ActivityID: "A001"},
			{ProjectID: "PRJ-1", Revision: "20250705100000", ActivityID: "A002"},
		}
		require.NoError(t, repo.PersistResources(ctx, resources))

		listed, total, err := repo.ListResources(Filter{ProjectID: "PRJ-1"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, listed, 2)
		assert.NotZero(t, listed[0].ID)
	})
}

func TestListResources(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedRevision(t, repo, "PRJ-1", "20250701000000", 25)
	seedRevision(t, repo, "PRJ-2", "20250701000000", 3)

	t.Run("paginates in insertion order", func(t *testing.T) {
		page1, total, err := repo.ListResources(Filter{ProjectID: "PRJ-1"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(25), total)
		require.Len(t, page1, 10)
		assert.Equal(t, "A001", page1[0].ActivityID)

		page3, _, err := repo.ListResources(Filter{ProjectID: "PRJ-1"}, 3, 10)
		require.NoError(t, err)
		require.Len(t, page3, 5)
		assert.Equal(t, "A021", page3[0].ActivityID)
	})

	t.Run("out-of-range page is empty, count unchanged", func(t *testing.T) {
		rows, total, err := repo.ListResources(Filter{ProjectID: "PRJ-1"}, 9, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(25), total)
		assert.Empty(t, rows)
	})

	t.Run("defaults page and size when out of range", func(t *testing.T) {
		rows, _, err := repo.ListResources(Filter{ProjectID: "PRJ-2"}, 0, -1)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("filters by project", func(t *testing.T) {
		_, total, err := repo.ListResources(Filter{ProjectID: "PRJ-2"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestRevisions(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("latest revision with no data", func(t *testing.T) {
		_, err := repo.LatestRevision("")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	seedRevision(t, repo, "PRJ-1", "20250701000000", 2)
	seedRevision(t, repo, "PRJ-1", "20250708000000", 2)
	seedRevision(t, repo, "PRJ-2", "20250703000000", 1)

	t.Run("latest revision is the greatest string", func(t *testing.T) {
		rev, err := repo.LatestRevision("")
		require.NoError(t, err)
		assert.Equal(t, "20250708000000", rev)
	})

	t.Run("latest revision scoped to a project", func(t *testing.T) {
		rev, err := repo.LatestRevision("PRJ-2")
		require.NoError(t, err)
		assert.Equal(t, "20250703000000", rev)
	})

	t.Run("distinct revisions newest first", func(t *testing.T) {
		revisions, err := repo.DistinctRevisions()
		require.NoError(t, err)
		assert.Equal(t, []string{"20250708000000", "20250703000000", "20250701000000"}, revisions)
	})

	t.Run("latest sentinel in a filter resolves per project", func(t *testing.T) {
		rows, total, err := repo.ListResources(Filter{ProjectID: "PRJ-1", Revision: RevisionLatest}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, row := range rows {
			assert.Equal(t, "20250708000000", row.Revision)
		}
	})

	t.Run("latest sentinel with no data matches nothing", func(t *testing.T) {
		rows, total, err := repo.ListResources(Filter{ProjectID: "PRJ-MISSING", Revision: RevisionLatest}, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, rows)
	})
}

func TestCraftPivot(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	crafts := []entities.CraftSpread{
		{ProjectID: "PRJ-1", Revision: "r1", ActivityID: "A001", ActivityName: "Piping", Week: "12-July-25", Value: 4},
		{ProjectID: "PRJ-1", Revision: "r1", ActivityID: "A001", ActivityName: "Piping", Week: "12-July-25", Value: 6},
		{ProjectID: "PRJ-1", Revision: "r1", ActivityID: "A001", ActivityName: "Piping", Week: "19-July-25", Value: 2.5},
		{ProjectID: "PRJ-1", Revision: "r1", ActivityID: "A002", ActivityName: "Welding", Week: "19-July-25", Value: 8},
	}
	require.NoError(t, repo.PersistCrafts(ctx, crafts))

	t.Run("sums per week and zero-fills missing cells", func(t *testing.T) {
		result, err := repo.CraftPivot(Filter{ProjectID: "PRJ-1"}, 1, 10)
		require.NoError(t, err)

		assert.Equal(t, int64(2), result.TotalCount)
		assert.Equal(t, []string{"12-July-25", "19-July-25"}, result.Columns)
		require.Len(t, result.Rows, 2)

		piping := result.Rows[0]
		assert.Equal(t, "A001", piping.ActivityID)
		assert.Equal(t, 10.0, piping.Weeks["12-July-25"])
		assert.Equal(t, 2.5, piping.Weeks["19-July-25"])

		welding := result.Rows[1]
		assert.Equal(t, "A002", welding.ActivityID)
		assert.Equal(t, 0.0, welding.Weeks["12-July-25"], "missing week appears as zero in the view")
		assert.Equal(t, 8.0, welding.Weeks["19-July-25"])
	})

	t.Run("grid total equals the stored value total", func(t *testing.T) {
		result, err := repo.CraftPivot(Filter{ProjectID: "PRJ-1"}, 1, 10)
		require.NoError(t, err)

		var gridSum float64
		for _, row := range result.Rows {
			for _, v := range row.Weeks {
				gridSum += v
			}
		}
		assert.Equal(t, 20.5, gridSum)
	})

	t.Run("pages by activity group", func(t *testing.T) {
		result, err := repo.CraftPivot(Filter{ProjectID: "PRJ-1"}, 2, 1)
		require.NoError(t, err)

		assert.Equal(t, int64(2), result.TotalCount)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "A002", result.Rows[0].ActivityID)
		assert.Equal(t, []string{"12-July-25", "19-July-25"}, result.Columns,
			"columns cover the full filter, not just the page")
	})

	t.Run("empty filter result yields empty grid", func(t *testing.T) {
		result, err := repo.CraftPivot(Filter{ProjectID: "PRJ-NONE"}, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, result.TotalCount)
		assert.Empty(t, result.Columns)
		assert.Empty(t, result.Rows)
	})
}

func TestPurgeRevisionsKeeping(t *testing.T) {
	t.Run("rejects non-positive keep", func(t *testing.T) {
		repo, cleanup := setupTestDB(t)
		defer cleanup()

		_, err := repo.PurgeRevisionsKeeping(0)
		assert.Error(t, err)
	})

	t.Run("keeps the newest revisions and deletes the rest", func(t *testing.T) {
		repo, cleanup := setupTestDB(t)
		defer cleanup()

		seedRevision(t, repo, "PRJ-1", "20250701000000", 2) // 2 resources + 4 crafts
		seedRevision(t, repo, "PRJ-1", "20250708000000", 2)
		seedRevision(t, repo, "PRJ-1", "20250715000000", 2)

		deleted, err := repo.PurgeRevisionsKeeping(2)
		require.NoError(t, err)
		assert.Equal(t, int64(6), deleted)

		revisions, err := repo.DistinctRevisions()
		require.NoError(t, err)
		assert.Equal(t, []string{"20250715000000", "20250708000000"}, revisions)
	})

	t.Run("no-op when fewer revisions than keep", func(t *testing.T) {
		repo, cleanup := setupTestDB(t)
		defer cleanup()

		seedRevision(t, repo, "PRJ-1", "20250701000000", 1)

		deleted, err := repo.PurgeRevisionsKeeping(5)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}
