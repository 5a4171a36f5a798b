// Package aggregate collapses per-line shift records into one row per driver
// per upload.
package aggregate

import (
	"sort"

	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
)

// labelVote counts label occurrences while remembering first-seen order so
// frequency ties resolve deterministically.
type labelVote struct {
	counts map[string]int
	order  []string
}

func newLabelVote() *labelVote {
	return &labelVote{counts: map[string]int{}}
}

func (v *labelVote) add(label string) {
	if _, seen := v.counts[label]; !seen {
		v.order = append(v.order, label)
	}
	v.counts[label]++
}

// winner returns the most frequent label; ties go to the label encountered
// first.
func (v *labelVote) winner() string {
	best := ""
	bestCount := 0
	for _, label := range v.order {
		if v.counts[label] > bestCount {
			best = label
			bestCount = v.counts[label]
		}
	}
	return best
}

type group struct {
	driver    string
	carriers  *labelVote
	providers *labelVote
	hours     float64
	records   int
}

// GroupByDriver collapses shift records into one DriverDayRow per normalized
// driver key: display name from the first occurrence, carrier and provider by
// majority vote, hours summed. Rows come back sorted by display name.
// Empty input yields an empty result.
func GroupByDriver(records []entity.ShiftRecord) []entity.DriverDayRow {
	groups := map[string]*group{}
	var keys []string

	for _, rec := range records {
		key := normalize.NameKey(rec.Driver)
		g, ok := groups[key]
		if !ok {
			g = &group{driver: rec.Driver, carriers: newLabelVote(), providers: newLabelVote()}
			groups[key] = g
			keys = append(keys, key)
		}
		g.carriers.add(rec.Carrier)
		g.providers.add(rec.Provider)
		g.hours += rec.Hours
		g.records++
	}

	rows := make([]entity.DriverDayRow, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		rows = append(rows, entity.DriverDayRow{
			DriverKey: key,
			Driver:    g.driver,
			Carrier:   g.carriers.winner(),
			Provider:  g.providers.winner(),
			Hours:     g.hours,
			Records:   g.records,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Driver < rows[j].Driver })
	return rows
}
