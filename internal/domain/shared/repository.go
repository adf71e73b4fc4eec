package shared

// Lifecycle replaces scattered is-deleted flags. Repositories filter on it
// in one place (see persistence.Active).
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "ACTIVE"
	LifecycleDeleted Lifecycle = "DELETED"
)

// IsActive reports whether the record is live
func (l Lifecycle) IsActive() bool {
	return l == "" || l == LifecycleActive
}

// Filter represents list query options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
