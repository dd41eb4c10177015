package reconcile

import "strings"

// strategy is one name-match rule. Strategies are evaluated in a fixed order,
// most specific first; the first hit wins. ok is false when the rule has no
// opinion, letting the next rule try.
type strategy interface {
	Name() string
	Match(raw string, keys []string) (canonical string, ok bool)
}

// exactMatch: byte-for-byte equality against a known key.
type exactMatch struct{}

func (exactMatch) Name() string { return "exact" }

func (exactMatch) Match(raw string, keys []string) (string, bool) {
	for _, key := range keys {
		if raw == key {
			return key, true
		}
	}
	return "", false
}

// caseInsensitiveMatch: equality ignoring case; returns the key's casing.
type caseInsensitiveMatch struct{}

func (caseInsensitiveMatch) Name() string { return "case_insensitive" }

func (caseInsensitiveMatch) Match(raw string, keys []string) (string, bool) {
	for _, key := range keys {
		if strings.EqualFold(raw, key) {
			return key, true
		}
	}
	return "", false
}

// aliasTable: fixed mapping of known alternate spellings to canonical names.
// The mapped value is returned even when it is not among the supplied keys;
// downstream lookups decide what an unknown canonical name means.
type aliasTable struct {
	aliases map[string]string
}

func (aliasTable) Name() string { return "alias" }

func (a aliasTable) Match(raw string, _ []string) (string, bool) {
	if canonical, ok := a.aliases[raw]; ok {
		return canonical, true
	}
	// Alias keys are curated by hand; tolerate casing drift in the input.
	for alias, canonical := range a.aliases {
		if strings.EqualFold(raw, alias) {
			return canonical, true
		}
	}
	return "", false
}

// tokenBoundaryMatch: first and last whitespace tokens both match a key's
// first and last tokens, case-insensitively. Catches middle-name drift
// ("Kunwar Siddharth Thakur" vs "Kunwar Thakur").
type tokenBoundaryMatch struct{}

func (tokenBoundaryMatch) Name() string { return "token_boundary" }

func (tokenBoundaryMatch) Match(raw string, keys []string) (string, bool) {
	rawTokens := strings.Fields(raw)
	if len(rawTokens) < 2 {
		return "", false
	}
	for _, key := range keys {
		keyTokens := strings.Fields(key)
		if len(keyTokens) < 2 {
			continue
		}
		if strings.EqualFold(rawTokens[0], keyTokens[0]) &&
			strings.EqualFold(rawTokens[len(rawTokens)-1], keyTokens[len(keyTokens)-1]) {
			return key, true
		}
	}
	return "", false
}

// firstTokenPrefix: the raw name's first token is a case-insensitive prefix of
// a key's first token. The loosest rule; it must stay last.
type firstTokenPrefix struct{}

func (firstTokenPrefix) Name() string { return "first_token_prefix" }

func (firstTokenPrefix) Match(raw string, keys []string) (string, bool) {
	rawTokens := strings.Fields(raw)
	if len(rawTokens) == 0 {
		return "", false
	}
	first := strings.ToLower(rawTokens[0])
	for _, key := range keys {
		keyTokens := strings.Fields(key)
		if len(keyTokens) == 0 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(keyTokens[0]), first) {
			return key, true
		}
	}
	return "", false
}
