package querylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/txstate-etc/featured-search-results/internal/db"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/token"
)

// Record is one logged query: the normalized text, when it was searched, and
// the results the latest search matched.
type Record struct {
	Query   string       `json:"query"`
	Hits    []time.Time  `json:"hits"`
	Results []domres.Ref `json:"results"`
}

// store is the consumer interface for the query log (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo keeps a rolling query log as JSON values with a retention TTL. Every
// recorded hit refreshes the TTL, so only queries idle for the full retention
// window expire.
type Repo struct {
	store     store
	prefix    string
	retention time.Duration

	now func() time.Time
}

// New creates a query log repository.
func New(s store, prefix string, retention time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, retention: retention, now: time.Now}
}

// Record logs a search hit for query along with the results it matched. Hits
// older than the retention window are pruned on the way in; the matched list
// is replaced wholesale, so it always reflects the latest search.
func (r *Repo) Record(ctx context.Context, query string, matched []domres.Ref) error {
	normalized := token.Join(token.Tokenize(query))
	if normalized == "" {
		return nil
	}
	key := r.key(normalized)

	rec := Record{Query: normalized}
	data, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &rec); err != nil {
			// corrupt entry, start over
			rec = Record{Query: normalized}
		}
	case errors.Is(err, db.ErrKeyNotFound):
	default:
		return fmt.Errorf("get %s: %w", key, err)
	}

	now := r.now()
	cutoff := now.Add(-r.retention)
	kept := rec.Hits[:0]
	for _, h := range rec.Hits {
		if h.After(cutoff) {
			kept = append(kept, h)
		}
	}
	rec.Hits = append(kept, now)
	rec.Results = matched

	out, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.store.SetWithTTL(ctx, key, out, r.retention); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// List returns all live records, most-searched first.
func (r *Repo) List(ctx context.Context) ([]Record, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan query log: %w", err)
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // expired between scan and get
			}
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if len(records[i].Hits) != len(records[j].Hits) {
			return len(records[i].Hits) > len(records[j].Hits)
		}
		return records[i].Query < records[j].Query
	})
	return records, nil
}

func (r *Repo) key(normalized string) string {
	return r.prefix + "querylog:" + normalized
}
