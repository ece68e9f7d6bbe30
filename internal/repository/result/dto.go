package result

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// entryDTO is the hash-embedded JSON shape of a keyphrase entry.
type entryDTO struct {
	Keywords []string `json:"keywords"`
	Mode     string   `json:"mode"`
	Priority int      `json:"priority"`
}

// buildHashFields converts a domain Result into a flat map[string]string for HSET.
// The keywords field is the space-joined union of all entry tokens so the FT
// index can serve prefix candidate retrieval over it.
func buildHashFields(r *domres.Result) (map[string]string, error) {
	dtos := make([]entryDTO, 0, len(r.Entries()))
	for _, e := range r.Entries() {
		dtos = append(dtos, entryDTO{
			Keywords: e.Keywords(),
			Mode:     string(e.Mode()),
			Priority: e.Priority(),
		})
	}
	entries, err := json.Marshal(dtos)
	if err != nil {
		return nil, err
	}

	cur := r.Currency()
	m := map[string]string{
		"url":        r.URL(),
		"title":      r.Title(),
		"tags":       strings.Join(r.Tags(), ","),
		"entries":    string(entries),
		"keywords":   strings.Join(r.Keywords(), " "),
		"priority":   strconv.Itoa(r.Priority()),
		"broken":     boolField(cur.Broken),
		"lasttested": epochField(cur.LastTested),
	}
	if cur.BrokenSince != nil {
		m["brokensince"] = epochField(*cur.BrokenSince)
	}
	return m, nil
}

// parseHashFields converts a flat hash map back into a domain Result.
func parseHashFields(id string, m map[string]string) (domres.Result, error) {
	var dtos []entryDTO
	if raw := m["entries"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			return domres.Result{}, err
		}
	}
	entries := make([]domres.Entry, 0, len(dtos))
	for _, d := range dtos {
		entries = append(entries, domres.ReconstructEntry(d.Keywords, domres.Mode(d.Mode), d.Priority))
	}

	var tags []string
	if m["tags"] != "" {
		tags = strings.Split(m["tags"], ",")
	}

	cur := domres.Currency{
		Broken:     m["broken"] == "1",
		LastTested: parseEpoch(m["lasttested"]),
	}
	if raw, ok := m["brokensince"]; ok && raw != "" {
		t := parseEpoch(raw)
		cur.BrokenSince = &t
	}

	return domres.Reconstruct(id, m["url"], m["title"], tags, entries, cur), nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func epochField(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func parseEpoch(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}
