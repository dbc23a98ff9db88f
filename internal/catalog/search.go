package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bitshub/internal/domain"
)

// AllCategories selects every product in InCategory.
const AllCategories = "all"

// fold normalizes s for case-insensitive comparison. A Caser holds state,
// so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Search returns the products whose name, description or category contains
// query, ignoring case. An empty query matches nothing.
func Search(products []domain.Product, query string) []domain.Product {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return []domain.Product{}
	}
	out := []domain.Product{}
	for _, p := range products {
		if strings.Contains(fold(p.Name), q) ||
			strings.Contains(fold(p.Description), q) ||
			strings.Contains(fold(string(p.Category)), q) {
			out = append(out, p)
		}
	}
	return out
}

// InCategory filters by category. AllCategories returns everything.
func InCategory(products []domain.Product, category string) []domain.Product {
	out := []domain.Product{}
	for _, p := range products {
		if category == AllCategories || string(p.Category) == category {
			out = append(out, p)
		}
	}
	return out
}
