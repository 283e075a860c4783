package entities

import "time"

// ResourceSpread is one imported row of a resource allocation file: the fixed
// attribute columns plus the summary quantities. All rows produced by one
// import run share a Revision.
type ResourceSpread struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID string `gorm:"index;size:50" json:"project_id"`
	Revision  string `gorm:"index;size:50" json:"revision"`

	ActivityID   string `gorm:"size:100" json:"activity_id"`
	ActivityName string `gorm:"size:255" json:"activity_name"`
	WBS          string `gorm:"column:wbs;size:100" json:"wbs"`
	WBSName      string `gorm:"column:wbs_name;size:255" json:"wbs_name"`
	Curve        string `gorm:"size:100" json:"curve"`
	Calendar     string `gorm:"size:100" json:"calendar"`
	ResourceID   string `gorm:"size:100" json:"resource_id"`
	ResourceName string `gorm:"size:255" json:"resource_name"`
	ResourceType string `gorm:"size:100" json:"resource_type"`

	BudgetedUnits       float64 `json:"budgeted_units"`
	ActualUnits         float64 `json:"actual_units"`
	RemainingUnits      float64 `json:"remaining_units"`
	RemainingLateFinish float64 `json:"remaining_late_finish"`

	ImportedAt time.Time `json:"imported_at"`
}

func (ResourceSpread) TableName() string {
	return "resource_spreads"
}

// CraftSpread is one weekly time-bucket value of a ResourceSpread row. The
// identifying fields are denormalized from the parent row for query
// convenience; there is no foreign key between the two tables.
type CraftSpread struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID string `gorm:"index;size:50" json:"project_id"`
	Revision  string `gorm:"index;size:50" json:"revision"`

	Week  string  `gorm:"index;size:50" json:"week"`
	Value float64 `json:"value"`

	ActivityID   string `gorm:"size:100" json:"activity_id"`
	ActivityName string `gorm:"size:255" json:"activity_name"`
	ResourceID   string `gorm:"size:100" json:"resource_id"`
	ResourceName string `gorm:"size:255" json:"resource_name"`
	ResourceType string `gorm:"size:100" json:"resource_type"`
}

func (CraftSpread) TableName() string {
	return "craft_spreads"
}
