package inspection

import "strings"

// FixedPinRule forces named inspectors into the crew of any lot matching the
// (product, process) key. A blank process matches every process of the
// product. Matching is case-sensitive on trimmed values.
type FixedPinRule struct {
	ProductNumber string
	ProcessName   string
	InspectorIDs  []string // ordered; order is preserved in the crew
}

// FixedPinTable is the loaded set of pin rules.
type FixedPinTable struct {
	rules []FixedPinRule
}

// NewFixedPinTable trims rule fields and drops rules without a product or
// without inspectors.
func NewFixedPinTable(rules []FixedPinRule) *FixedPinTable {
	t := &FixedPinTable{}
	for _, r := range rules {
		r.ProductNumber = strings.TrimSpace(r.ProductNumber)
		r.ProcessName = strings.TrimSpace(r.ProcessName)
		if r.ProductNumber == "" || len(r.InspectorIDs) == 0 {
			continue
		}
		ids := make([]string, 0, len(r.InspectorIDs))
		for _, id := range r.InspectorIDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		r.InspectorIDs = ids
		t.rules = append(t.rules, r)
	}
	return t
}

// Add appends extra rules (e.g. fixed inspectors from advance registrations).
func (t *FixedPinTable) Add(rules ...FixedPinRule) {
	merged := NewFixedPinTable(rules)
	t.rules = append(t.rules, merged.rules...)
}

// Match returns the ordered, deduplicated inspectors pinned to the lot's
// (product, process) pair.
func (t *FixedPinTable) Match(productNumber, processName string) []string {
	product := strings.TrimSpace(productNumber)
	process := strings.TrimSpace(processName)

	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rules {
		if r.ProductNumber != product {
			continue
		}
		if r.ProcessName != "" && r.ProcessName != process {
			continue
		}
		for _, id := range r.InspectorIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Rules returns the underlying rules (for diagnostics and round-trips).
func (t *FixedPinTable) Rules() []FixedPinRule {
	return t.rules
}
