package result

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/txstate-etc/featured-search-results/internal/domain"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// --- Mocks ---

type mockRepo struct {
	saved   *domres.Result
	getRes  domres.Result
	getErr  error
	allRes  []domres.Result
	saveErr error
	delErr  error
	deleted string
}

func (m *mockRepo) Save(_ context.Context, res *domres.Result) error {
	m.saved = res
	return m.saveErr
}

func (m *mockRepo) Get(_ context.Context, _ string) (domres.Result, error) {
	return m.getRes, m.getErr
}

func (m *mockRepo) All(_ context.Context) ([]domres.Result, error) {
	return m.allRes, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.delErr
}

func validInput() Input {
	return Input{
		URL:   "//gato.edu/admissions",
		Title: "Admissions",
		Tags:  []string{"Admissions", "apply"},
		Entries: []EntryInput{
			{Keyphrase: "Apply to Texas State", Mode: domres.Phrase, Priority: 2},
			{Keyphrase: "admissions", Mode: domres.Keyword, Priority: 1},
		},
	}
}

// --- Tests ---

func TestCreate(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	res, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID() == "" {
		t.Error("expected generated id")
	}
	if repo.saved == nil || repo.saved.ID() != res.ID() {
		t.Error("expected save call")
	}
	if len(res.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(res.Entries()))
	}
	// entry keyphrases are canonicalized on the way in
	kw := res.Entries()[0].Keywords()
	if len(kw) != 4 || kw[0] != "apply" || kw[3] != "state" {
		t.Errorf("unexpected keywords: %v", kw)
	}
}

func TestCreate_InvalidURL(t *testing.T) {
	svc := New(&mockRepo{})

	in := validInput()
	in.URL = "not a url"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
}

func TestCreate_BadEntryMode(t *testing.T) {
	svc := New(&mockRepo{})

	in := validInput()
	in.Entries[0].Mode = "fuzzy"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
}

func TestCreate_NoEntries(t *testing.T) {
	svc := New(&mockRepo{})

	in := validInput()
	in.Entries = nil
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
}

func TestCreate_SaveConflict(t *testing.T) {
	repo := &mockRepo{saveErr: domain.ErrAlreadyExists}
	svc := New(repo)

	_, err := svc.Create(context.Background(), validInput())
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdate_PreservesCurrency(t *testing.T) {
	tested := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entry, _ := domres.NewEntry("admissions", domres.Keyword, 1)
	current := domres.Reconstruct(
		"abc", "//gato.edu/old", "Old", nil, []domres.Entry{entry},
		domres.Currency{Broken: true, LastTested: tested},
	)
	repo := &mockRepo{getRes: current}
	svc := New(repo)

	res, err := svc.Update(context.Background(), "abc", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID() != "abc" {
		t.Errorf("id must not change, got %s", res.ID())
	}
	if res.URL() != "//gato.edu/admissions" || res.Title() != "Admissions" {
		t.Errorf("editable fields not replaced: %+v", res)
	}
	cur := res.Currency()
	if !cur.Broken || !cur.LastTested.Equal(tested) {
		t.Errorf("currency not preserved: %+v", cur)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrNotFound}
	svc := New(repo)

	_, err := svc.Update(context.Background(), "missing", validInput())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	if err := svc.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deleted != "abc" {
		t.Errorf("unexpected id: %s", repo.deleted)
	}
}
