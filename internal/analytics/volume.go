package analytics

import (
	"sort"
	"time"

	"github.com/ironlog/ironlog/internal/facts"
)

// MuscleGroupVolume is the averaged weekly set count for one muscle group,
// with its zone classification.
type MuscleGroupVolume struct {
	MuscleGroup   string     `json:"muscle_group"`
	AvgWeeklySets float64    `json:"avg_weekly_sets"`
	Zone          Zone       `json:"zone"`
	Bounds        ZoneBounds `json:"bounds"`
}

// VolumeByMuscleGroup averages sets per ISO week per muscle group across the
// trailing windowDays days. Every group in bounds is emitted, zero-valued
// when no sets were logged, so consumers render a complete axis. Groups seen
// in the data but absent from bounds are appended with zero bounds.
func VolumeByMuscleGroup(fcts []facts.SetFact, now time.Time, windowDays int, bounds map[string]ZoneBounds) []MuscleGroupVolume {
	since := now.AddDate(0, 0, -windowDays)
	weeks := weeksBetween(since, now)

	counts := make(map[string]int)
	for _, f := range facts.Window(fcts, since, time.Time{}) {
		group := f.MuscleGroup
		if group == "" {
			continue
		}
		counts[group]++
	}

	// Canonical axis order first, then any extra groups alphabetically.
	groups := make([]string, 0, len(bounds))
	for _, g := range MuscleGroups {
		if _, ok := bounds[g]; ok {
			groups = append(groups, g)
		}
	}
	var extra []string
	for g := range bounds {
		if !contains(groups, g) {
			extra = append(extra, g)
		}
	}
	for g := range counts {
		if !contains(groups, g) && !contains(extra, g) {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	groups = append(groups, extra...)

	out := make([]MuscleGroupVolume, 0, len(groups))
	for _, g := range groups {
		avg := float64(counts[g]) / float64(weeks)
		b := bounds[g]
		out = append(out, MuscleGroupVolume{
			MuscleGroup:   g,
			AvgWeeklySets: avg,
			Zone:          ZoneFor(avg, b),
			Bounds:        b,
		})
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
