package analytics

// Zone is one of the five ordered weekly-volume zones.
type Zone string

const (
	// ZoneUnder is below maintenance volume.
	ZoneUnder Zone = "under"
	// ZoneMinimum is at or above maintenance but below MEV.
	ZoneMinimum Zone = "minimum"
	// ZoneOptimal is between MEV and MAV.
	ZoneOptimal Zone = "optimal"
	// ZoneHigh is between MAV and MRV.
	ZoneHigh Zone = "high"
	// ZoneOver exceeds MRV.
	ZoneOver Zone = "over"
)

// ZoneBounds are the four boundaries mapping averaged weekly sets into the
// five zones. Maintenance < MEV < MAV < MRV.
type ZoneBounds struct {
	Maintenance float64 `json:"maintenance"`
	MEV         float64 `json:"mev"`
	MAV         float64 `json:"mav"`
	MRV         float64 `json:"mrv"`
}

// ZoneFor maps averaged weekly sets into a zone by boundary comparison.
func ZoneFor(avgWeeklySets float64, b ZoneBounds) Zone {
	switch {
	case avgWeeklySets < b.Maintenance:
		return ZoneUnder
	case avgWeeklySets < b.MEV:
		return ZoneMinimum
	case avgWeeklySets < b.MAV:
		return ZoneOptimal
	case avgWeeklySets < b.MRV:
		return ZoneHigh
	default:
		return ZoneOver
	}
}

// MuscleGroups is the canonical muscle-group axis. Volume queries back-fill
// every group so charts always render a complete axis.
var MuscleGroups = []string{
	"Chest", "Back", "Shoulders", "Biceps", "Triceps",
	"Quads", "Hamstrings", "Glutes", "Calves", "Core",
}

// DefaultZoneBounds returns per-group boundary defaults. Overridable through
// the application-state preferences.
func DefaultZoneBounds() map[string]ZoneBounds {
	return map[string]ZoneBounds{
		"Chest":      {Maintenance: 4, MEV: 8, MAV: 16, MRV: 22},
		"Back":       {Maintenance: 6, MEV: 10, MAV: 18, MRV: 25},
		"Shoulders":  {Maintenance: 4, MEV: 8, MAV: 16, MRV: 26},
		"Biceps":     {Maintenance: 3, MEV: 6, MAV: 14, MRV: 20},
		"Triceps":    {Maintenance: 3, MEV: 6, MAV: 14, MRV: 18},
		"Quads":      {Maintenance: 4, MEV: 8, MAV: 14, MRV: 18},
		"Hamstrings": {Maintenance: 3, MEV: 6, MAV: 12, MRV: 16},
		"Glutes":     {Maintenance: 2, MEV: 4, MAV: 12, MRV: 16},
		"Calves":     {Maintenance: 4, MEV: 8, MAV: 14, MRV: 18},
		"Core":       {Maintenance: 0, MEV: 6, MAV: 14, MRV: 20},
	}
}
