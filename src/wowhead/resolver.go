package wowhead

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

// ErrResolutionFailure is returned when a details page yields neither a name nor an icon for an id
var ErrResolutionFailure = errors.New("resolution failure")

// Kind is an entity type that can be resolved from its details page
type Kind string

const (
	ItemKind  Kind = "item"
	SpellKind Kind = "spell"
)

func (k Kind) path(id int) string {
	if k == SpellKind {
		return SpellPath(id)
	}
	return ItemPath(id)
}

func (k Kind) gathererType() int {
	if k == SpellKind {
		return SpellType
	}
	return ItemType
}

// Resolved is the minimal identity of an entity read from its details page
type Resolved struct {
	Name    string
	IconURL *string
}

type resolution struct {
	resolved Resolved
	err      error
}

// Resolver looks up entities missing from the known sets by fetching their details page.
// Every id is fetched at most once per Resolver; failures are remembered too.
type Resolver struct {
	client   http.HTTPClient
	repairer repair.Repairer
	version  types.SiteVersion

	mu    sync.Mutex
	cache map[string]resolution
}

// NewResolver creates a resolver for a site version
func NewResolver(client http.HTTPClient, repairer repair.Repairer, version types.SiteVersion) *Resolver {
	return &Resolver{
		client:   client,
		repairer: repairer,
		version:  version,
		cache:    make(map[string]resolution),
	}
}

func cacheKey(kind Kind, id int) string {
	return string(kind) + "=" + strconv.Itoa(id)
}

// Resolve returns the name and icon of an entity.
// Context errors are returned as-is and are not cached.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, id int) (Resolved, error) {
	key := cacheKey(kind, id)

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached.resolved, cached.err
	}

	resolved, err := r.resolve(ctx, kind, id)
	if err != nil && ctx.Err() != nil {
		return Resolved{}, ctx.Err()
	}

	r.mu.Lock()
	r.cache[key] = resolution{resolved: resolved, err: err}
	r.mu.Unlock()

	if err != nil {
		slog.Warn("failed to resolve reference", "kind", kind, "id", id, "error", err)
	} else {
		slog.Info("resolved reference", "kind", kind, "id", id, "name", resolved.Name)
	}
	return resolved, err
}

// Len returns how many distinct ids have been looked up
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Resolver) resolve(ctx context.Context, kind Kind, id int) (Resolved, error) {
	pageURL := PageURL(r.version, kind.path(id))
	body, err := fetch(ctx, r.client, pageURL)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %s %d: %w", ErrResolutionFailure, kind, id, err)
	}
	return ParseDetails(body, kind, id, r.repairer)
}

// ParseDetails reads the name and icon of an entity from its details page.
// The heading is preferred for the name, the icon-association call supplies the icon and is
// the fallback for the name.
func ParseDetails(body []byte, kind Kind, id int, repairer repair.Repairer) (Resolved, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %s %d: failed to parse HTML: %w", ErrResolutionFailure, kind, id, err)
	}

	name := strings.TrimSpace(doc.Find("h1.heading-size-1").First().Text())

	var icon string
	idStr := strconv.Itoa(id)
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		entries, err := ParseIconCalls(s.Text(), repairer)
		if err != nil {
			slog.Debug("ignoring unreadable icon call", "kind", kind, "id", id, "error", err)
			return
		}
		for _, entry := range entries {
			if entry.Type != kind.gathererType() || entry.ID != idStr {
				continue
			}
			icon = entry.Icon
			if name == "" {
				name = entry.Name
			}
		}
	})

	if name == "" {
		return Resolved{}, fmt.Errorf("%w: %s %d: no heading or icon call on details page", ErrResolutionFailure, kind, id)
	}

	resolved := Resolved{Name: name}
	if icon != "" {
		u := IconURL(icon)
		resolved.IconURL = &u
	}
	return resolved, nil
}
