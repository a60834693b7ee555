package risk

import (
	"sort"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Less reports whether a is more urgent than b: Critical before Watch before
// Safe, then the smaller buffer first.
func Less(a, b domain.RiskAssessment) bool {
	if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
		return ra < rb
	}
	return a.BufferTime < b.BufferTime
}

// SortResults orders results most urgent first. Failed evaluations go last.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		ei, ej := results[i].Err != nil, results[j].Err != nil
		if ei || ej {
			return !ei && ej
		}
		return Less(results[i].Assessment, results[j].Assessment)
	})
}
