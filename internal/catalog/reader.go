package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Sentinel error kinds returned by Reader implementations.
var (
	ErrNotFound = errors.New("catalog: item not found")
	ErrCorrupt  = errors.New("catalog: item data corrupt")
)

// Reader is the external catalog-reader contract: an owned, read-only view
// over immutable items. Loading and bundling real content is an external
// collaborator's responsibility; the core only ever reads through this
// interface.
type Reader interface {
	FetchAll(ctx context.Context) ([]Item, error)
	FetchBySection(ctx context.Context, section Section) ([]Item, error)
	FetchBySubskills(ctx context.Context, ids map[string]bool) ([]Item, error)
	FetchByID(ctx context.Context, id string) (Item, error)
}

// MemoryReader is a read-only, in-memory Reader implementation backed by a
// caller-supplied slice of items. It is the reference implementation used
// by tests and the demo CLI; a host application may supply any other
// Reader (e.g. one backed by bundled content files) without the rest of
// the core changing.
type MemoryReader struct {
	byID    map[string]Item
	ordered []Item
}

// NewMemoryReader validates and indexes the given items. An invalid item
// (per Item.Validate) is reported as ErrCorrupt with the validation detail.
func NewMemoryReader(items []Item) (*MemoryReader, error) {
	r := &MemoryReader{
		byID:    make(map[string]Item, len(items)),
		ordered: append([]Item(nil), items...),
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })
	for _, it := range r.ordered {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if _, dup := r.byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrCorrupt, it.ID)
		}
		r.byID[it.ID] = it
	}
	return r, nil
}

func (r *MemoryReader) FetchAll(_ context.Context) ([]Item, error) {
	return append([]Item(nil), r.ordered...), nil
}

func (r *MemoryReader) FetchBySection(_ context.Context, section Section) ([]Item, error) {
	var out []Item
	for _, it := range r.ordered {
		if it.Section == section {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *MemoryReader) FetchBySubskills(_ context.Context, ids map[string]bool) ([]Item, error) {
	var out []Item
	for _, it := range r.ordered {
		if ids[it.PrimarySubskill] {
			out = append(out, it)
			continue
		}
		for _, s := range it.SecondarySubskills {
			if ids[s] {
				out = append(out, it)
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryReader) FetchByID(_ context.Context, id string) (Item, error) {
	it, ok := r.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return it, nil
}
