package persistence

import (
	"strings"

	"github.com/corebank/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidateSortOrder normalizes the direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// OrderBy orders by the filter's whitelisted column. Columns outside the
// whitelist never reach the SQL.
func OrderBy(filter shared.Filter, allowedFields map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: ValidateSortField(filter.OrderBy, allowedFields, defaultField)},
			Desc:   ValidateSortOrder(filter.OrderDir) == "DESC",
		})
	}
}

// DaySortFields are the sortable accounting day columns
var DaySortFields = map[string]bool{
	"date":       true,
	"status":     true,
	"opened_at":  true,
	"closed_at":  true,
	"created_at": true,
}

// CeilingSortFields are the sortable ceiling request columns
var CeilingSortFields = map[string]bool{
	"requested_at": true,
	"validated_at": true,
	"amount":       true,
	"status":       true,
	"reference":    true,
}
