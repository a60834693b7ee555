package dataset

import "strings"

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// column lists the accepted header spellings for one logical column. The
// first alias is the canonical name used in error messages.
type column []string

var (
	colDate        = column{"tanggal", "date", "observed_at"}
	colSection     = column{"seksi_tujuan", "destination_section", "section"}
	colComponent   = column{"nama_komponen", "component_name", "component"}
	colStock       = column{"stok_tersedia", "available_stock", "stock"}
	colConsumption = column{"konsumsi_per_jam", "consumption_rate", "consumption_per_hour"}
	colLeadTime    = column{"lead_time", "lead time"}
)

// headerIndex resolves logical columns against a header row.
type headerIndex struct {
	header []string
}

func (h headerIndex) find(c column) int {
	targets := make(map[string]struct{}, len(c))
	for _, name := range c {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, name := range h.header {
		if _, ok := targets[normalizeColumnName(name)]; ok {
			return i
		}
	}
	return -1
}

// require returns the indexes of all columns, or the canonical names of the
// ones that are missing.
func (h headerIndex) require(cols ...column) ([]int, []string) {
	idx := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		idx[i] = h.find(c)
		if idx[i] < 0 {
			missing = append(missing, c[0])
		}
	}
	return idx, missing
}
