package extraction

import (
	"regexp"
	"strings"
)

// transportMarkerRe matches the whole-word company markers that separate the
// driver's name from the carrier label: TRANS, TRANSPORTE, TRANSPORTES.
var transportMarkerRe = regexp.MustCompile(`\bTRANS(?:PORTES?)?\b`)

// SplitDriverCarrier splits the "rest" fragment of a shift line into driver
// name and carrier label at the first transport marker. When no marker is
// present the whole fragment serves as both; the source data leaves that
// case ambiguous and downstream reconciliation usually repairs it via the
// vehicle master.
func SplitDriverCarrier(rest string) (driver, carrier string) {
	up := strings.ToUpper(rest)
	if loc := transportMarkerRe.FindStringIndex(up); loc != nil {
		return strings.TrimSpace(rest[:loc[0]]), strings.TrimSpace(rest[loc[0]:])
	}
	trimmed := strings.TrimSpace(rest)
	return trimmed, trimmed
}

// carrierRule maps a recognisable substring pattern in a carrier label to
// the canonical carrier name. Rules are evaluated in order; first match wins.
type carrierRule struct {
	match     func(up string) bool
	canonical string
}

func containsRule(sub, canonical string) carrierRule {
	return carrierRule{
		match:     func(up string) bool { return strings.Contains(up, sub) },
		canonical: canonical,
	}
}

var carrierRules = []carrierRule{
	containsRule("PIBEJO", "PIBEJO"),
	containsRule("CAMPOY", "CAMPOY"),
	containsRule("SIMANCAS", "MARTIN SIMANCAS"),
	containsRule("ARANDA", "ARANDA"),
	containsRule("CALVO", "JUAN CALVO"),
	{
		match: func(up string) bool {
			return strings.Contains(up, "TRANSMAU") || strings.Contains(up, "TRANS MAU")
		},
		canonical: "TRANSMAU",
	},
	{
		match: func(up string) bool {
			return strings.Contains(up, "ANGEL") &&
				(strings.Contains(up, "MUNOZ") || strings.Contains(up, "MUÑOZ"))
		},
		canonical: "ANGEL MUNOZ",
	},
	{
		match: func(up string) bool {
			return strings.Contains(up, "RUBEN") || strings.Contains(up, "CUESTA")
		},
		canonical: "RUBEN CUESTA",
	},
}

// GuessCarrierFromLabel resolves a raw carrier label to a canonical carrier
// name, or "" when no rule matches.
func GuessCarrierFromLabel(label string) string {
	up := strings.ToUpper(label)
	for _, rule := range carrierRules {
		if rule.match(up) {
			return rule.canonical
		}
	}
	return ""
}
