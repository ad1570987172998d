package tui

const unknownViewType = "unknown"

// ViewType represents which tab is active.
type ViewType int

const (
	ViewDashboard ViewType = iota
	ViewViolations
	ViewReports
)

var viewOrder = []ViewType{ViewDashboard, ViewViolations, ViewReports}

// String returns the lowercase name of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewViolations:
		return "violations"
	case ViewReports:
		return "reports"
	default:
		return unknownViewType
	}
}

// Title is the tab label.
func (v ViewType) Title() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewViolations:
		return "Violations"
	case ViewReports:
		return "Reports"
	default:
		return unknownViewType
	}
}

func (v ViewType) next() ViewType {
	return viewOrder[(int(v)+1)%len(viewOrder)]
}

func (v ViewType) prev() ViewType {
	return viewOrder[(int(v)+len(viewOrder)-1)%len(viewOrder)]
}
