package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/mvasilenko/spreadhub/internal/entities"
)

// RawRow is one parsed data line addressed by header name. It is produced by
// the CSV reader and consumed immediately; nothing retains it.
type RawRow map[string]string

// Fixed attribute column names expected in resource spread exports.
const (
	headerProjectID           = "ProjectId"
	headerActivityID          = "ActivityId"
	headerActivityName        = "ActivityName"
	headerWBS                 = "WBS"
	headerWBSName             = "WBS Name"
	headerCurve               = "Curve"
	headerCalendar            = "Calendar"
	headerResourceID          = "ResourceId"
	headerResourceName        = "Resource Id Name"
	headerResourceType        = "Resource Type"
	headerBudgetedUnits       = "Budgeted Units"
	headerActualUnits         = "Actual Units"
	headerRemainingUnits      = "Remaining Units"
	headerRemainingLateFinish = "Remaining Late Finish"
)

// TransformRow converts one raw row into a ResourceSpread plus one
// CraftSpread per weekly column that holds a non-blank numeric value.
//
// Attribute fields are best-effort: a missing column yields an empty string,
// an unparsable quantity yields zero. Blank or non-numeric weekly cells are
// skipped entirely rather than stored as zero; downstream aggregation relies
// on the distinction between "no data for this week" and "zero reported".
func TransformRow(row RawRow, cls Classification, revision string) (entities.ResourceSpread, []entities.CraftSpread) {
	resource := entities.ResourceSpread{
		ProjectID: row[headerProjectID],
		Revision:  revision,

		ActivityID:   row[headerActivityID],
		ActivityName: row[headerActivityName],
		WBS:          row[headerWBS],
		WBSName:      row[headerWBSName],
		Curve:        row[headerCurve],
		Calendar:     row[headerCalendar],
		ResourceID:   row[headerResourceID],
		ResourceName: row[headerResourceName],
		ResourceType: row[headerResourceType],

		BudgetedUnits:       numericField(row, headerBudgetedUnits),
		ActualUnits:         numericField(row, headerActualUnits),
		RemainingUnits:      numericField(row, headerRemainingUnits),
		RemainingLateFinish: numericField(row, headerRemainingLateFinish),

		ImportedAt: time.Now().UTC(),
	}

	var crafts []entities.CraftSpread
	for _, week := range cls.WeekHeaders {
		cell := strings.TrimSpace(row[week])
		if cell == "" {
			continue
		}
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		crafts = append(crafts, entities.CraftSpread{
			ProjectID: resource.ProjectID,
			Revision:  revision,
			Week:      week,
			Value:     value,

			ActivityID:   resource.ActivityID,
			ActivityName: resource.ActivityName,
			ResourceID:   resource.ResourceID,
			ResourceName: resource.ResourceName,
			ResourceType: resource.ResourceType,
		})
	}

	return resource, crafts
}

func numericField(row RawRow, header string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(row[header]), 64)
	if err != nil {
		return 0
	}
	return value
}
