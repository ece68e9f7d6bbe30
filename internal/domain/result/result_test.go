package result

import (
	"reflect"
	"testing"
	"time"
)

func mustEntry(t *testing.T, keyphrase string, mode Mode, priority int) Entry {
	t.Helper()
	e, err := NewEntry(keyphrase, mode, priority)
	if err != nil {
		t.Fatalf("NewEntry(%q): %v", keyphrase, err)
	}
	return e
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("Texas State, Homepage!", Phrase, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(e.Keywords(), []string{"texas", "state", "homepage"}) {
		t.Errorf("keywords = %v", e.Keywords())
	}
	if e.Mode() != Phrase || e.Priority() != 3 {
		t.Errorf("mode/priority = %v/%d", e.Mode(), e.Priority())
	}
}

func TestNewEntryRejectsEmptyKeyphrase(t *testing.T) {
	for _, keyphrase := range []string{"", "   ", "?!."} {
		if _, err := NewEntry(keyphrase, Exact, 1); err == nil {
			t.Errorf("NewEntry(%q) expected error", keyphrase)
		}
	}
}

func TestNewEntryRejectsBadMode(t *testing.T) {
	for _, m := range []Mode{"", "EXACT", "fuzzy"} {
		if _, err := NewEntry("texas", m, 1); err == nil {
			t.Errorf("NewEntry mode %q expected error", m)
		}
	}
}

func TestModeIsValid(t *testing.T) {
	for _, m := range []Mode{Exact, Phrase, Keyword} {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false", m)
		}
	}
	if Mode("exactly").IsValid() {
		t.Error("unexpected valid mode")
	}
}

func TestNewResult(t *testing.T) {
	entries := []Entry{mustEntry(t, "texas state", Keyword, 1)}

	tests := []struct {
		name    string
		url     string
		title   string
		entries []Entry
		wantErr bool
	}{
		{"https url", "https://www.txst.edu", "Texas State", entries, false},
		{"protocol relative", "//www.txst.edu/library", "Library", entries, false},
		{"trimmed url", "  https://www.txst.edu  ", "Texas State", entries, false},
		{"bare host", "www.txst.edu", "Texas State", entries, true},
		{"empty title", "https://www.txst.edu", "   ", entries, true},
		{"no entries", "https://www.txst.edu", "Texas State", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("id1", tt.url, tt.title, nil, tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewResultNormalizesTags(t *testing.T) {
	r, err := New("id1", "https://example.edu", "Example",
		[]string{" Library ", "library", "HOURS", ""},
		[]Entry{mustEntry(t, "example", Exact, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Tags(), []string{"library", "hours"}) {
		t.Errorf("tags = %v", r.Tags())
	}
}

func TestSortedEntries(t *testing.T) {
	entries := []Entry{
		mustEntry(t, "low", Exact, 1),
		mustEntry(t, "high", Exact, 9),
		mustEntry(t, "mid a", Phrase, 5),
		mustEntry(t, "mid b", Phrase, 5),
	}
	r, err := New("id1", "https://example.edu", "Example", nil, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sorted := r.SortedEntries()
	priorities := make([]int, len(sorted))
	for i, e := range sorted {
		priorities[i] = e.Priority()
	}
	if !reflect.DeepEqual(priorities, []int{9, 5, 5, 1}) {
		t.Errorf("priorities = %v", priorities)
	}
	// ties keep ingestion order
	if sorted[1].Keywords()[1] != "a" || sorted[2].Keywords()[1] != "b" {
		t.Errorf("tie order not stable: %v %v", sorted[1].Keywords(), sorted[2].Keywords())
	}
	// original order untouched
	if r.Entries()[0].Priority() != 1 {
		t.Error("SortedEntries mutated the receiver")
	}
}

func TestResultPriorityAndKeywords(t *testing.T) {
	r, err := New("id1", "https://example.edu", "Example", nil, []Entry{
		mustEntry(t, "texas state", Keyword, 2),
		mustEntry(t, "state homepage", Phrase, 7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Priority() != 7 {
		t.Errorf("Priority() = %d, want 7", r.Priority())
	}
	if !reflect.DeepEqual(r.Keywords(), []string{"texas", "state", "homepage"}) {
		t.Errorf("Keywords() = %v", r.Keywords())
	}
}

func TestReconstructCarriesCurrency(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cur := Currency{Broken: true, LastTested: since.Add(24 * time.Hour), BrokenSince: &since}
	r := Reconstruct("id1", "https://example.edu", "Example", nil,
		[]Entry{ReconstructEntry([]string{"example"}, Exact, 1)}, cur)
	if !r.Currency().Broken || r.Currency().BrokenSince == nil {
		t.Errorf("currency not carried: %+v", r.Currency())
	}
}

func TestToRefHidesInternals(t *testing.T) {
	r := Reconstruct("id1", "https://example.edu", "Example", []string{"tag"},
		[]Entry{ReconstructEntry([]string{"example"}, Exact, 1)}, Currency{})
	ref := r.ToRef()
	if ref.URL != "https://example.edu" || ref.Title != "Example" {
		t.Errorf("ref = %+v", ref)
	}
}
