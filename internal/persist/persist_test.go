package persist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/testutil"
)

var (
	laptop = domain.Product{ID: "p1", Name: "Ultrabook 14", Price: 100, Category: domain.CategoryLaptops, InStock: true}
	mouse  = domain.Product{ID: "p2", Name: "Wireless Mouse", Price: 50, Category: domain.CategoryAccessories, InStock: true}
	seed   = []domain.Product{laptop, mouse}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// newEngine returns a deterministic engine over the seed catalog.
func newEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(testutil.Epoch)
	base := []engine.Option{
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSequentialIDs("id")),
		engine.WithCatalog(seed),
		engine.WithLogger(discardLogger()),
	}
	return engine.New(append(base, opts...)...), clock
}

func dispatch(t *testing.T, e *engine.Engine, actions ...engine.Action) {
	t.Helper()
	for _, a := range actions {
		out := e.Dispatch(a)
		require.NoError(t, out.Err, "dispatch %s", a.ActionName())
	}
}

// failingStorage fails every write.
type failingStorage struct {
	*MemoryStorage
	sets int
}

var errDiskFull = errors.New("disk full")

func (f *failingStorage) Set(context.Context, string, []byte) error {
	f.sets++
	return errDiskFull
}

func (f *failingStorage) Remove(context.Context, string) error {
	return errDiskFull
}

func slogTo(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}
