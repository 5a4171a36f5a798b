package extraction

import (
	"regexp"
	"strings"

	"github.com/pibejo/shift-billing/internal/normalize"
)

// shiftTypeMarker labels the per-day shift rows in the source report. Lines
// without it are headers, totals or other noise.
const shiftTypeMarker = "Diaria"

// The report emits a variable number of trailing numeric columns before the
// worked-hours value, so the scraper anchors from the right: three trailing
// numbers mean the hours are the rightmost, two mean the second.
var (
	threeNumbersRe = regexp.MustCompile(`(\d+[.,]\d+|\d+)\s+(\d+[.,]\d+|\d+)\s+(\d+[.,]\d+|\d+)\s*$`)
	twoNumbersRe   = regexp.MustCompile(`(\d+[.,]\d+|\d+)\s+(\d+[.,]\d+|\d+)\s*$`)
)

// ShiftLine is the raw yield of one report line: the driver+carrier text and
// the worked hours.
type ShiftLine struct {
	Rest  string
	Hours float64
}

// ParseShiftLine scrapes one normalized report line. It returns (nil, nil)
// when the line does not describe a shift, which is the common case, and an
// error only when a numeric token fails to parse.
func ParseShiftLine(line string) (*ShiftLine, error) {
	var hoursToken string
	var core string

	if loc := threeNumbersRe.FindStringSubmatchIndex(line); loc != nil {
		hoursToken = line[loc[6]:loc[7]]
		core = strings.TrimSpace(line[:loc[0]])
	} else if loc := twoNumbersRe.FindStringSubmatchIndex(line); loc != nil {
		hoursToken = line[loc[4]:loc[5]]
		core = strings.TrimSpace(line[:loc[0]])
	} else {
		return nil, nil
	}

	if !strings.Contains(core, shiftTypeMarker) {
		return nil, nil
	}

	hours, err := normalize.ParseLocaleNumber(hoursToken)
	if err != nil {
		return nil, err
	}

	// From the marker onward, minus the marker's own token, is the
	// driver+carrier fragment.
	tail := core[strings.Index(core, shiftTypeMarker):]
	parts := strings.Fields(tail)
	rest := ""
	if len(parts) > 1 {
		rest = strings.Join(parts[1:], " ")
	}
	return &ShiftLine{Rest: rest, Hours: hours}, nil
}
