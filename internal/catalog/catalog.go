package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/bitshub/internal/domain"
)

//go:embed schema.cue
var schemaCUE string

//go:embed seed.cue
var seedCUE []byte

// LoadError is a catalog that failed validation or decoding.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load returns the built-in seed catalog.
func Load() ([]domain.Product, error) {
	return Parse("seed.cue", seedCUE)
}

// LoadFile reads and validates an operator-provided CUE catalog.
func LoadFile(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(path, data)
}

// Parse validates CUE source against the product schema and decodes the
// products list. filename is used in error positions only.
func Parse(filename string, src []byte) ([]domain.Product, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var products []domain.Product
	if err := v.LookupPath(cue.ParsePath("products")).Decode(&products); err != nil {
		return nil, formatCUEError(err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if seen[p.ID] {
			return nil, &LoadError{Message: fmt.Sprintf("duplicate product id %q", p.ID)}
		}
		seen[p.ID] = true
	}
	return products, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
