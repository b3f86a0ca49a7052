package inspection

import "strings"

// SkillLevel is the ternary proficiency grade from the skill matrix.
type SkillLevel int

const (
	SkillLevelNone     SkillLevel = 0
	SkillLevelBeginner SkillLevel = 1
	SkillLevelCapable  SkillLevel = 2
	SkillLevelExpert   SkillLevel = 3
)

// SkillRow is one row of the skill matrix: proficiency per inspector for a
// (product, process) pair. A blank process applies to every process of the
// product.
type SkillRow struct {
	ProductNumber string
	ProcessNumber string
	Levels        map[string]SkillLevel // inspector ID -> level
}

// SkillMatrix answers candidate queries for crew selection. A product absent
// from the matrix is a *new product* and is handled by the new-product team
// instead of skill lookups.
type SkillMatrix struct {
	rows     []SkillRow
	products map[string]bool
}

// NewSkillMatrix builds a matrix from parsed rows.
func NewSkillMatrix(rows []SkillRow) *SkillMatrix {
	m := &SkillMatrix{products: make(map[string]bool)}
	for _, r := range rows {
		r.ProductNumber = strings.TrimSpace(r.ProductNumber)
		r.ProcessNumber = strings.TrimSpace(r.ProcessNumber)
		if r.ProductNumber == "" {
			continue
		}
		m.rows = append(m.rows, r)
		m.products[r.ProductNumber] = true
	}
	return m
}

// HasProduct reports whether the product is registered at all.
// Unregistered products are new products.
func (m *SkillMatrix) HasProduct(productNumber string) bool {
	return m.products[strings.TrimSpace(productNumber)]
}

// Level returns the inspector's proficiency for a product and process.
// Rows with a blank process match any process; when both a process-specific
// and a blank row exist, the process-specific row wins.
func (m *SkillMatrix) Level(productNumber, processNumber, inspectorID string) SkillLevel {
	product := strings.TrimSpace(productNumber)
	process := strings.TrimSpace(processNumber)

	var wildcard SkillLevel
	for _, r := range m.rows {
		if r.ProductNumber != product {
			continue
		}
		level, ok := r.Levels[inspectorID]
		if !ok {
			continue
		}
		switch r.ProcessNumber {
		case process:
			return level
		case "":
			wildcard = level
		}
	}
	return wildcard
}

// Qualified reports whether the inspector holds any skill grade (1..3) for the
// product and process.
func (m *SkillMatrix) Qualified(productNumber, processNumber, inspectorID string) bool {
	return m.Level(productNumber, processNumber, inspectorID) >= SkillLevelBeginner
}
