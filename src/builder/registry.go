package builder

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// Resolver looks up an entity that isn't in any known set
type Resolver interface {
	Resolve(ctx context.Context, kind wowhead.Kind, id int) (wowhead.Resolved, error)
}

// ReagentRegistry is the in-run set of known reagents.
// Ids missing from the set are resolved once and the new reagents queued for appending
// to the reagent file.
type ReagentRegistry struct {
	builder  *Builder
	resolver Resolver

	mu      sync.Mutex
	byID    map[int]string
	ids     map[string]int
	pending []types.Reagent
}

// NewReagentRegistry seeds a registry with the reagents already written
func NewReagentRegistry(b *Builder, resolver Resolver, known []types.Record) *ReagentRegistry {
	r := &ReagentRegistry{
		builder:  b,
		resolver: resolver,
		byID:     make(map[int]string, len(known)),
		ids:      make(map[string]int, len(known)),
	}
	for _, record := range known {
		id, ok := record.Int("wowhead_id")
		if !ok {
			continue
		}
		name := record.String("name")
		r.byID[id] = name
		if _, seen := r.ids[name]; !seen {
			r.ids[name] = id
		}
	}
	return r
}

// Name returns the reagent name for an item id, resolving unknown ids from their details page.
// An id that can't be resolved is registered under its own id so no reference is dropped.
func (r *ReagentRegistry) Name(ctx context.Context, id int) (string, error) {
	r.mu.Lock()
	name, ok := r.byID[id]
	r.mu.Unlock()
	if ok {
		return name, nil
	}

	reagent := types.Reagent{
		Name:      strconv.Itoa(id),
		WowheadID: id,
		LinkURL:   r.builder.entityURL("item", id, ""),
	}

	resolved, err := r.resolver.Resolve(ctx, wowhead.ItemKind, id)
	switch {
	case err == nil:
		reagent.Name = normalizeName(resolved.Name)
		reagent.LinkURL = r.builder.entityURL("item", id, resolved.Name)
		reagent.IconURL = resolved.IconURL
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, wowhead.ErrResolutionFailure):
		slog.Warn("keeping unresolved reagent under its id", "id", id, "error", err)
	default:
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// a different id already owns this name, share its identity
	if existing, taken := r.ids[reagent.Name]; taken && existing != id {
		r.byID[id] = reagent.Name
		return reagent.Name, nil
	}

	r.byID[id] = reagent.Name
	r.ids[reagent.Name] = id
	r.pending = append(r.pending, reagent)
	return reagent.Name, nil
}

// Pending returns the reagents discovered since the last Flush
func (r *ReagentRegistry) Pending() []types.Reagent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Reagent(nil), r.pending...)
}

// Flush returns the pending reagents and clears the queue
func (r *ReagentRegistry) Flush() []types.Reagent {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := r.pending
	r.pending = nil
	return pending
}
