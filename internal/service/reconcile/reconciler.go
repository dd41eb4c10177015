package reconcile

import (
	"log/slog"
	"strings"
)

// defaultAliases maps alternate spellings seen in the tracker roster to the
// canonical names used by the leave sheet and manager directory. Curated by
// hand as mismatches are reported.
var defaultAliases = map[string]string{
	"Mohd. Arbaz Khan":      "Mohd Arbaz Khan",
	"Mohammed Abdul Aleem":  "Mohamed Abdul Aleem",
	"Mohan Chaudhari":       "MOHAN CHAUDHARI",
	"Pankaj Bansal":         "Pankaj kumar Bansal",
	"Rishab Kala":           "Rishabh Kala",
	"Jeetanshu":             "Jeetanshu Srivastava",
	"Shwetha Kamath":        "Shwetha Vasanth Kamath",
	"Kesavan":               "Kesavan Manokar",
	"Siddharth Thakur":      "Kunwar Siddharth Thakur",
	"Ashique":               "Ashique Mohammed C",
	"Istekhar":              "Istekhar Khan",
	"Nekhlesh":              "Nekhlesh Singh Sajwan",
	"Nihal":                 "Nihal H Adoni",
	"Satish":                "Pillai Satish",
	"Prashanth":             "Prashanth Manda",
	"Pratham":               "Pratham Agarwal",
	"Prateek":               "Pratik Kumar",
	"Punesh":                "Punesh Ramrao Borkar",
	"Rajnikant":             "Rajnikant Sonvane",
	"Ritwik":                "Ritwik Rohitashwa",
	"Shwetha":               "Shwetha Vasanth Kamath",
	"Sushil":                "Sushil Baburao Khatke",
	"Vaibhav":               "Vaibhav Chandolia",
	"Yaoreichan":            "Yaoreichan Ramshang",
}

// Reconciler maps raw name strings onto the canonical keys of another data
// source. Matching is a first-match-wins cascade; when nothing matches the
// input is returned unchanged, which downstream code treats as "no match"
// rather than a failure.
type Reconciler struct {
	strategies []strategy
	logger     *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		strategies: []strategy{
			exactMatch{},
			caseInsensitiveMatch{},
			aliasTable{aliases: defaultAliases},
			tokenBoundaryMatch{},
			firstTokenPrefix{},
		},
		logger: logger,
	}
}

// Resolve maps raw onto one of keys, or returns raw unchanged when no rule
// matches. Empty input short-circuits to "no match".
func (r *Reconciler) Resolve(raw string, keys []string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	for _, s := range r.strategies {
		if canonical, ok := s.Match(raw, keys); ok {
			if canonical != raw {
				r.logger.Debug("name resolved", "raw", raw, "canonical", canonical, "strategy", s.Name())
			}
			return canonical
		}
	}

	r.logger.Debug("name unresolved, passing through", "raw", raw)
	return raw
}

// RowMatch is the looser rule used to locate an employee's row in a sheet:
// exact, substring in either direction, or every token longer than two
// characters of one side contained in the other. All comparisons ignore case.
func RowMatch(name, cell string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	cell = strings.ToLower(strings.TrimSpace(cell))
	if name == "" || cell == "" {
		return false
	}
	if name == cell || strings.Contains(cell, name) || strings.Contains(name, cell) {
		return true
	}
	if tokensContained(name, cell) || tokensContained(cell, name) {
		return true
	}
	return false
}

// tokensContained reports whether every token of a longer than two characters
// appears somewhere in b. Short tokens are skipped: initials and particles
// match far too freely.
func tokensContained(a, b string) bool {
	matched := false
	for _, tok := range strings.Fields(a) {
		if len(tok) <= 2 {
			continue
		}
		if !strings.Contains(b, tok) {
			return false
		}
		matched = true
	}
	return matched
}
