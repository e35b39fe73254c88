package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// Index is an ordered, read-only view of the catalog keyed by episode id.
type Index struct {
	episodes   []Episode
	byID       map[string]int
	duplicates []string
}

// NewIndex builds an index preserving input order. Entries without an id are
// dropped; when an id repeats, the first entry wins and the id is reported by
// Duplicates.
func NewIndex(episodes []Episode) *Index {
	idx := &Index{
		episodes: make([]Episode, 0, len(episodes)),
		byID:     make(map[string]int, len(episodes)),
	}
	for _, ep := range episodes {
		ep.ID = strings.TrimSpace(ep.ID)
		ep.Guest = strings.TrimSpace(ep.Guest)
		if ep.ID == "" {
			continue
		}
		if _, exists := idx.byID[ep.ID]; exists {
			idx.duplicates = append(idx.duplicates, ep.ID)
			continue
		}
		idx.byID[ep.ID] = len(idx.episodes)
		idx.episodes = append(idx.episodes, ep)
	}
	return idx
}

// Len returns the number of indexed episodes.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.episodes)
}

// All returns the episodes in catalog order.
func (i *Index) All() []Episode {
	if i == nil {
		return nil
	}
	return slices.Clone(i.episodes)
}

// Lookup returns the episode with the given id.
func (i *Index) Lookup(id string) (Episode, bool) {
	if i == nil {
		return Episode{}, false
	}
	pos, ok := i.byID[strings.TrimSpace(id)]
	if !ok {
		return Episode{}, false
	}
	return i.episodes[pos], true
}

// Duplicates lists ids that appeared more than once in the source.
func (i *Index) Duplicates() []string {
	if i == nil {
		return nil
	}
	return slices.Clone(i.duplicates)
}

// NewestFirst returns the episodes ordered by numeric id descending. Ids that
// are not integers keep their relative catalog order after the numeric ones.
func (i *Index) NewestFirst() []Episode {
	out := i.All()
	slices.SortStableFunc(out, func(a, b Episode) int {
		an, aok := a.Number()
		bn, bok := b.Number()
		switch {
		case aok && bok:
			return cmp.Compare(bn, an)
		case aok:
			return -1
		case bok:
			return 1
		default:
			return 0
		}
	})
	return out
}
