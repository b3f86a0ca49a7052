package inspection

import "strings"

// ProductRate is one product-master row: how long one unit of a product takes
// to inspect at a given process.
type ProductRate struct {
	ProductNumber  string
	ProcessNumber  string
	SecondsPerUnit float64
}

// ProductMaster resolves seconds-per-unit rates. For a given
// (product, process) at most one active rate exists; when the exact process is
// missing the first registered row for the product is the fallback.
type ProductMaster struct {
	byProduct map[string][]ProductRate
}

// NewProductMaster builds a master from rows, preserving registration order
// per product (order determines the fallback row).
func NewProductMaster(rows []ProductRate) *ProductMaster {
	m := &ProductMaster{byProduct: make(map[string][]ProductRate)}
	for _, r := range rows {
		pn := strings.TrimSpace(r.ProductNumber)
		if pn == "" {
			continue
		}
		r.ProductNumber = pn
		r.ProcessNumber = strings.TrimSpace(r.ProcessNumber)
		m.byProduct[pn] = append(m.byProduct[pn], r)
	}
	return m
}

// SecondsPerUnit resolves the rate for a product and process.
// Returns false only when the product has no rows at all.
func (m *ProductMaster) SecondsPerUnit(productNumber, processNumber string) (float64, bool) {
	rows, ok := m.byProduct[strings.TrimSpace(productNumber)]
	if !ok || len(rows) == 0 {
		return 0, false
	}
	process := strings.TrimSpace(processNumber)
	for _, r := range rows {
		if r.ProcessNumber == process {
			return r.SecondsPerUnit, true
		}
	}
	return rows[0].SecondsPerUnit, true
}

// Products returns the set of registered product numbers.
func (m *ProductMaster) Products() []string {
	out := make([]string, 0, len(m.byProduct))
	for pn := range m.byProduct {
		out = append(out, pn)
	}
	return out
}
