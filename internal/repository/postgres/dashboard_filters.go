package postgres

import (
	"fmt"
	"strings"
	"time"
)

// ObservationFilter narrows observation queries. Zero fields are ignored.
type ObservationFilter struct {
	Date      time.Time
	Section   string
	Component string
}

// buildObservationFilterClause constructs the WHERE clause for observation queries
func buildObservationFilterClause(filter ObservationFilter, alias string, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if !filter.Date.IsZero() {
		clauses = append(clauses, fmt.Sprintf("%sobserved_at = $%d", alias, idx))
		args = append(args, filter.Date.Format("2006-01-02"))
		idx++
	}
	if filter.Section != "" {
		clauses = append(clauses, fmt.Sprintf("%ssection = $%d", alias, idx))
		args = append(args, filter.Section)
		idx++
	}
	if filter.Component != "" {
		clauses = append(clauses, fmt.Sprintf("%scomponent = $%d", alias, idx))
		args = append(args, filter.Component)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
