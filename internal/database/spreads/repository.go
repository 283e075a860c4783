// Package spreads provides database operations for imported resource and
// craft spread records: batched persistence for the import pipeline and the
// query side used by the read API (pagination, latest-revision resolution,
// weekly pivot).
package spreads

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mvasilenko/spreadhub/internal/entities"
)

// insertChunkSize keeps multi-row inserts well below SQLite's bind variable
// limit; each record carries over a dozen columns.
const insertChunkSize = 200

// RevisionLatest is the sentinel revision filter resolved to the greatest
// revision string present.
const RevisionLatest = "latest"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PersistResources durably stores one drained batch of resource records.
func (r *Repository) PersistResources(ctx context.Context, resources []entities.ResourceSpread) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(resources, insertChunkSize).Error
}

// PersistCrafts durably stores one drained batch of weekly value records.
// Called after the corresponding resource batch.
func (r *Repository) PersistCrafts(ctx context.Context, crafts []entities.CraftSpread) error {
	if len(crafts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(crafts, insertChunkSize).Error
}

// Filter narrows queries to a project and/or revision. A Revision of
// RevisionLatest resolves to the newest revision present for the project.
type Filter struct {
	ProjectID string
	Revision  string
}

// ListResources returns one page of resource records plus the total count
// matching the filter, ordered by insertion id.
func (r *Repository) ListResources(filter Filter, page, pageSize int) ([]entities.ResourceSpread, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	query := r.db.Model(&entities.ResourceSpread{})
	query, err := r.applyFilter(query, filter)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var resources []entities.ResourceSpread
	err = query.Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&resources).Error
	return resources, total, err
}

// LatestRevision resolves the greatest revision string present, optionally
// scoped to a project. Returns gorm.ErrRecordNotFound when nothing has been
// imported yet.
func (r *Repository) LatestRevision(projectID string) (string, error) {
	query := r.db.Model(&entities.ResourceSpread{}).Where("revision <> ''")
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var revision string
	err := query.Order("revision DESC").Limit(1).Pluck("revision", &revision).Error
	if err != nil {
		return "", err
	}
	if revision == "" {
		return "", gorm.ErrRecordNotFound
	}
	return revision, nil
}

// DistinctRevisions lists all revisions present, newest first.
func (r *Repository) DistinctRevisions() ([]string, error) {
	var revisions []string
	err := r.db.Model(&entities.ResourceSpread{}).
		Distinct("revision").
		Order("revision DESC").
		Pluck("revision", &revisions).Error
	return revisions, err
}

// CraftPivotRow is one (project, activity) group with its weekly totals.
// Weeks absent from storage appear with a zero value; the zero exists only in
// this view, never in the craft_spreads table.
type CraftPivotRow struct {
	ProjectID    string             `json:"project_id"`
	ActivityID   string             `json:"activity_id"`
	ActivityName string             `json:"activity_name"`
	Weeks        map[string]float64 `json:"weeks"`
}

// CraftPivotResult is one page of the pivoted weekly grid.
type CraftPivotResult struct {
	TotalCount int64           `json:"total_count"`
	Columns    []string        `json:"columns"`
	Rows       []CraftPivotRow `json:"rows"`
}

// CraftPivot groups craft records by (project, activity), sums values per
// week label and pages by group.
func (r *Repository) CraftPivot(filter Filter, page, pageSize int) (*CraftPivotResult, error) {
	page, pageSize = normalizePage(page, pageSize)

	base := r.db.Model(&entities.CraftSpread{})
	base, err := r.applyFilter(base, filter)
	if err != nil {
		return nil, err
	}

	// Distinct week labels become the grid columns. Label ordering is
	// lexicographic, matching the stored week strings.
	var weeks []string
	if err := base.Session(&gorm.Session{}).
		Distinct("week").
		Order("week ASC").
		Pluck("week", &weeks).Error; err != nil {
		return nil, err
	}

	grouped := base.Session(&gorm.Session{}).
		Select("project_id, activity_id, activity_name").
		Group("project_id, activity_id, activity_name")

	var total int64
	if err := r.db.Table("(?) AS grouped", grouped).Count(&total).Error; err != nil {
		return nil, err
	}

	type groupKey struct {
		ProjectID    string
		ActivityID   string
		ActivityName string
	}
	var groups []groupKey
	if err := grouped.
		Order("project_id ASC, activity_id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&groups).Error; err != nil {
		return nil, err
	}

	result := &CraftPivotResult{TotalCount: total, Columns: weeks, Rows: []CraftPivotRow{}}
	if len(groups) == 0 {
		return result, nil
	}

	projectIDs := make([]string, 0, len(groups))
	wanted := make(map[[2]string]int, len(groups))
	for i, g := range groups {
		projectIDs = append(projectIDs, g.ProjectID)
		wanted[[2]string{g.ProjectID, g.ActivityID}] = i
	}

	type weekTotal struct {
		ProjectID  string
		ActivityID string
		Week       string
		Total      float64
	}
	var totals []weekTotal
	if err := base.Session(&gorm.Session{}).
		Select("project_id, activity_id, week, SUM(value) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id, activity_id, week").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	rows := make([]CraftPivotRow, len(groups))
	for i, g := range groups {
		cells := make(map[string]float64, len(weeks))
		for _, w := range weeks {
			cells[w] = 0
		}
		rows[i] = CraftPivotRow{
			ProjectID:    g.ProjectID,
			ActivityID:   g.ActivityID,
			ActivityName: g.ActivityName,
			Weeks:        cells,
		}
	}
	for _, t := range totals {
		if i, ok := wanted[[2]string{t.ProjectID, t.ActivityID}]; ok {
			rows[i].Weeks[t.Week] = t.Total
		}
	}

	result.Rows = rows
	return result, nil
}

// PurgeRevisionsKeeping deletes all records outside the newest keep
// revisions. Returns the number of deleted rows across both tables.
func (r *Repository) PurgeRevisionsKeeping(keep int) (int64, error) {
	if keep <= 0 {
		return 0, errors.New("keep must be positive")
	}

	revisions, err := r.DistinctRevisions()
	if err != nil {
		return 0, err
	}
	if len(revisions) <= keep {
		return 0, nil
	}
	stale := revisions[keep:]

	var deleted int64
	res := r.db.Where("revision IN ?", stale).Delete(&entities.ResourceSpread{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	res = r.db.Where("revision IN ?", stale).Delete(&entities.CraftSpread{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	return deleted, nil
}

// applyFilter adds the project/revision conditions, resolving the "latest"
// sentinel against the resource table.
func (r *Repository) applyFilter(query *gorm.DB, filter Filter) (*gorm.DB, error) {
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Revision != "" {
		revision := filter.Revision
		if revision == RevisionLatest {
			latest, err := r.LatestRevision(filter.ProjectID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Nothing imported yet: match nothing rather than everything.
				return query.Where("1 = 0"), nil
			}
			if err != nil {
				return nil, err
			}
			revision = latest
		}
		query = query.Where("revision = ?", revision)
	}
	return query, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}
