package repository

import (
	"context"
	"testing"
	"time"

	"github.com/knowdistrict/knowdistrict/internal/models"
	"github.com/knowdistrict/knowdistrict/internal/search"
	"go.uber.org/zap"
)

// newTestStore returns a MemoryStore whose clock advances one second per
// call, making ordering deterministic.
func newTestStore() *MemoryStore {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	return store
}

func ptr[T any](v T) *T { return &v }

func TestMemoryStore_DocumentLifecycle(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	created, err := store.CreateDocument(ctx, models.InsertDocument{
		Title:   "Vacation Policy",
		Content: "Employees get 20 days",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 || created.LastUpdated.IsZero() {
		t.Fatalf("expected assigned id and timestamp, got %+v", created)
	}

	got, err := store.GetDocument(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Vacation Policy" || got.Content != "Employees get 20 days" {
		t.Errorf("unexpected document: %+v", got)
	}

	updated, err := store.UpdateDocument(ctx, created.ID, models.DocumentPatch{
		Content: ptr("Employees get 25 days"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.LastUpdated.After(created.LastUpdated) {
		t.Error("update must stamp a strictly later LastUpdated")
	}
	if updated.Title != "Vacation Policy" {
		t.Error("fields absent from the patch must be unchanged")
	}

	if err := store.DeleteDocument(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetDocument(ctx, created.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteDocument(ctx, created.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestMemoryStore_UpdateClearsCategory(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	cat, _ := store.CreateCategory(ctx, models.InsertCategory{Name: "HR"})
	docRec, _ := store.CreateDocument(ctx, models.InsertDocument{
		Title: "Policy", Content: "text", CategoryID: &cat.ID,
	})

	updated, err := store.UpdateDocument(ctx, docRec.ID, models.DocumentPatch{ClearCategory: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CategoryID != nil {
		t.Errorf("expected cleared category, got %v", *updated.CategoryID)
	}
}

func TestMemoryStore_ListNewestFirstAndFiltered(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	cat, _ := store.CreateCategory(ctx, models.InsertCategory{Name: "HR"})
	first, _ := store.CreateDocument(ctx, models.InsertDocument{Title: "First", Content: "a", CategoryID: &cat.ID})
	second, _ := store.CreateDocument(ctx, models.InsertDocument{Title: "Second", Content: "b"})

	docs, err := store.GetDocuments(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != second.ID || docs[1].ID != first.ID {
		t.Errorf("expected newest first [%d %d], got %+v", second.ID, first.ID, docs)
	}

	filtered, err := store.GetDocuments(ctx, &cat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != first.ID {
		t.Errorf("expected only the categorized document, got %+v", filtered)
	}
}

func TestMemoryStore_CategoryRoundTrip(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, models.InsertCategory{Name: "HR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetCategory(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "HR" || got.Description != nil {
		t.Errorf("expected {HR <nil>}, got %+v", got)
	}
}

func TestMemoryStore_UpdateCategoryClearsDescription(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, models.InsertCategory{
		Name: "HR", Description: ptr("people things"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.UpdateCategory(ctx, created.ID, models.CategoryPatch{ClearDescription: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != nil {
		t.Errorf("expected cleared description, got %q", *got.Description)
	}
	if got.Name != "HR" {
		t.Errorf("name must survive a description-only patch, got %q", got.Name)
	}
}

func TestMemoryStore_DeleteCategoryClearsReferences(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	cat, _ := store.CreateCategory(ctx, models.InsertCategory{Name: "HR"})
	var ids []int64
	for i := 0; i < 3; i++ {
		d, _ := store.CreateDocument(ctx, models.InsertDocument{
			Title: "Doc", Content: "text", CategoryID: &cat.ID,
		})
		ids = append(ids, d.ID)
	}

	if err := store.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range ids {
		d, err := store.GetDocument(ctx, id)
		if err != nil {
			t.Fatalf("document %d must survive category deletion: %v", id, err)
		}
		if d.CategoryID != nil {
			t.Errorf("document %d left with dangling category %d", id, *d.CategoryID)
		}
	}
	if _, err := store.GetCategory(ctx, cat.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Users(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "alice", "hash", models.RoleReader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.CreateUser(ctx, "alice", "hash2", models.RoleEditor); err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, err := store.GetUserByUsername(ctx, "alice")
	if err != nil || got.ID != created.ID {
		t.Fatalf("expected to find alice, got %+v, %v", got, err)
	}

	promoted, err := store.UpdateUserRole(ctx, created.ID, models.RoleEditor)
	if err != nil || promoted.Role != models.RoleEditor {
		t.Fatalf("expected editor role, got %+v, %v", promoted, err)
	}
	if _, err := store.UpdateUserRole(ctx, 99, models.RoleEditor); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// The tier scenarios below run the full engine against the memory corpus.

func seedVacationCorpus(t *testing.T, store *MemoryStore) (policy, sick *models.Document) {
	t.Helper()
	ctx := context.Background()
	var err error
	policy, err = store.CreateDocument(ctx, models.InsertDocument{
		Title: "Vacation Policy", Content: "Employees get 20 days",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	sick, err = store.CreateDocument(ctx, models.InsertDocument{
		Title: "Sick Leave", Content: "Vacation days accrue monthly",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return policy, sick
}

func TestEngineWithMemoryCorpus_FlexibleSubstring(t *testing.T) {
	store := newTestStore()
	policy, sick := seedVacationCorpus(t, store)
	engine := search.NewEngine(store, zap.NewNop())

	// "vacation" appears verbatim only as a word, so the phrase tier
	// matches both documents too; assert the flexible path explicitly.
	docs, err := store.Flexible(context.Background(), "vacation", []string{"vacation"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != sick.ID || docs[1].ID != policy.ID {
		t.Errorf("expected both documents newest first, got %+v", docs)
	}

	// Through the engine the single word matches the phrase tier.
	docs, err = engine.Search(context.Background(), "vacation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected both documents, got %+v", docs)
	}
}

func TestEngineWithMemoryCorpus_PhraseTierWins(t *testing.T) {
	store := newTestStore()
	_, sick := seedVacationCorpus(t, store)
	engine := search.NewEngine(store, zap.NewNop())

	// "vacation days" appears adjacent only in the sick-leave document.
	docs, err := engine.Search(context.Background(), `"vacation days"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != sick.ID {
		t.Errorf("expected only the phrase match, got %+v", docs)
	}
}

func TestEngineWithMemoryCorpus_FlexibleANDsAllTerms(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	if _, err := store.CreateDocument(ctx, models.InsertDocument{
		Title:   "Quarterly Review",
		Content: "The board met to review results",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	engine := search.NewEngine(store, zap.NewNop())

	// Flexible matching requires every term: "minutes" appears nowhere,
	// so the query misses even though "quarterly" and "board" are present.
	docs, err := engine.Search(ctx, "quarterly board minutes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no results under all-terms matching, got %+v", docs)
	}

	// Dropping the missing term matches via prefix AND.
	docs, err = engine.Search(ctx, "quarterly board")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected one result, got %+v", docs)
	}
}

func TestEngineWithMemoryCorpus_PrefixMatching(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	if _, err := store.CreateDocument(ctx, models.InsertDocument{
		Title:   "Onboarding Checklist",
		Content: "Steps for new employees",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	engine := search.NewEngine(store, zap.NewNop())

	docs, err := engine.Search(ctx, "onboard employ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected a prefix match, got %+v", docs)
	}
}

func TestEngineWithMemoryCorpus_DeletedNeverReturned(t *testing.T) {
	store := newTestStore()
	policy, sick := seedVacationCorpus(t, store)
	engine := search.NewEngine(store, zap.NewNop())
	ctx := context.Background()

	if err := store.DeleteDocument(ctx, sick.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs, err := engine.Search(ctx, "vacation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range docs {
		if d.ID == sick.ID {
			t.Fatal("deleted document returned by search")
		}
	}
	if len(docs) != 1 || docs[0].ID != policy.ID {
		t.Errorf("expected only the surviving document, got %+v", docs)
	}
}

func TestEngineWithMemoryCorpus_Deterministic(t *testing.T) {
	store := newTestStore()
	seedVacationCorpus(t, store)
	engine := search.NewEngine(store, zap.NewNop())
	ctx := context.Background()

	first, err := engine.Search(ctx, "vacation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Search(ctx, "vacation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ordering differs at %d: %d vs %d", i, first[i].ID, second[i].ID)
		}
	}
}
