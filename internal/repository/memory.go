package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/knowdistrict/knowdistrict/internal/models"
	"github.com/knowdistrict/knowdistrict/internal/search"
)

// MemoryStore is a map-backed implementation of the user, category, and
// document repositories plus the search corpus. It backs the server when
// no database DSN is configured, and the deterministic test suites.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int64]models.User
	categories map[int64]models.Category
	documents  map[int64]models.Document
	userID     int64
	categoryID int64
	documentID int64
	now        func() time.Time
}

// NewMemoryStore returns an empty MemoryStore stamping records with
// time.Now.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]models.User),
		categories: make(map[int64]models.Category),
		documents:  make(map[int64]models.Document),
		now:        time.Now,
	}
}

// SetClock replaces the timestamp source. Tests use a stepping clock to
// get deterministic ordering.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateUser stores a new user, or returns ErrDuplicate when the
// username is taken.
func (s *MemoryStore) CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, ErrDuplicate
		}
	}
	s.userID++
	created := models.User{
		ID:           s.userID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	s.users[created.ID] = created
	return &created, nil
}

// GetUserByUsername returns a user by login name, or ErrNotFound.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetUsers returns all users ordered by creation time.
func (s *MemoryStore) GetUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// UpdateUserRole assigns a new role to the user, or returns ErrNotFound.
func (s *MemoryStore) UpdateUserRole(ctx context.Context, id int64, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return &u, nil
}

// GetCategories returns all categories ordered by name.
func (s *MemoryStore) GetCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID < cats[j].ID
	})
	return cats, nil
}

// GetCategory returns a category by ID, or ErrNotFound.
func (s *MemoryStore) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &cat, nil
}

// CreateCategory stores a new category and assigns its ID.
func (s *MemoryStore) CreateCategory(ctx context.Context, cat models.InsertCategory) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categoryID++
	created := models.Category{
		ID:          s.categoryID,
		Name:        cat.Name,
		Description: cat.Description,
	}
	s.categories[created.ID] = created
	return &created, nil
}

// UpdateCategory applies a partial update, or returns ErrNotFound.
func (s *MemoryStore) UpdateCategory(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		cat.Name = *patch.Name
	}
	if patch.Description != nil {
		cat.Description = patch.Description
	} else if patch.ClearDescription {
		cat.Description = nil
	}
	s.categories[id] = cat
	return &cat, nil
}

// DeleteCategory removes a category and clears the reference on every
// document that pointed at it. The mutex makes the two steps atomic.
func (s *MemoryStore) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	for docID, doc := range s.documents {
		if doc.CategoryID != nil && *doc.CategoryID == id {
			doc.CategoryID = nil
			s.documents[docID] = doc
		}
	}
	delete(s.categories, id)
	return nil
}

// GetDocuments returns all documents newest first, optionally filtered to
// one category.
func (s *MemoryStore) GetDocuments(ctx context.Context, categoryID *int64) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]models.Document, 0, len(s.documents))
	for _, d := range s.documents {
		if categoryID != nil && (d.CategoryID == nil || *d.CategoryID != *categoryID) {
			continue
		}
		docs = append(docs, d)
	}
	sortNewestFirst(docs)
	return docs, nil
}

// GetDocument returns a document by ID, or ErrNotFound.
func (s *MemoryStore) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

// CreateDocument stores a new document with an assigned ID and timestamp.
func (s *MemoryStore) CreateDocument(ctx context.Context, doc models.InsertDocument) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documentID++
	created := models.Document{
		ID:          s.documentID,
		Title:       doc.Title,
		Content:     doc.Content,
		CategoryID:  doc.CategoryID,
		AuthorID:    doc.AuthorID,
		LastUpdated: s.now(),
	}
	s.documents[created.ID] = created
	return &created, nil
}

// UpdateDocument applies a partial update and re-stamps LastUpdated.
// The stamp is forced strictly past the previous one so repeated updates
// within one clock tick still order correctly.
func (s *MemoryStore) UpdateDocument(ctx context.Context, id int64, patch models.DocumentPatch) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.CategoryID != nil {
		doc.CategoryID = patch.CategoryID
	} else if patch.ClearCategory {
		doc.CategoryID = nil
	}

	ts := s.now()
	if !ts.After(doc.LastUpdated) {
		ts = doc.LastUpdated.Add(time.Nanosecond)
	}
	doc.LastUpdated = ts

	s.documents[id] = doc
	return &doc, nil
}

// DeleteDocument removes a document permanently, or returns ErrNotFound.
func (s *MemoryStore) DeleteDocument(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

// ExactPhrase matches documents whose title-plus-content tokens contain
// the phrase tokens contiguously, case-insensitive. Ordered newest first.
func (s *MemoryStore) ExactPhrase(ctx context.Context, phrase string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := search.Tokens(phrase)
	if len(want) == 0 {
		return []models.Document{}, nil
	}

	matched := make([]models.Document, 0)
	for _, d := range s.documents {
		have := search.Tokens(d.Title + " " + d.Content)
		if containsAdjacent(have, want) {
			matched = append(matched, d)
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

// Flexible matches documents where the raw query is a case-insensitive
// substring of title or content, or where every query term prefix-matches
// some token. Ordered newest first.
func (s *MemoryStore) Flexible(ctx context.Context, raw string, terms []string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(raw)
	matched := make([]models.Document, 0)
	for _, d := range s.documents {
		if strings.Contains(strings.ToLower(d.Title), needle) ||
			strings.Contains(strings.ToLower(d.Content), needle) {
			matched = append(matched, d)
			continue
		}
		if len(terms) > 0 && allTermsPrefixMatch(search.Tokens(d.Title+" "+d.Content), terms) {
			matched = append(matched, d)
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

// containsAdjacent reports whether want appears as a contiguous
// subsequence of have.
func containsAdjacent(have, want []string) bool {
	if len(want) > len(have) {
		return false
	}
	for i := 0; i+len(want) <= len(have); i++ {
		ok := true
		for j, w := range want {
			if have[i+j] != w {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// allTermsPrefixMatch reports whether every term prefix-matches at least
// one token.
func allTermsPrefixMatch(tokens, terms []string) bool {
	for _, term := range terms {
		found := false
		for _, tok := range tokens {
			if strings.HasPrefix(tok, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// sortNewestFirst orders documents by LastUpdated descending, breaking
// ties by ID descending to keep repeated queries stable.
func sortNewestFirst(docs []models.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].LastUpdated.Equal(docs[j].LastUpdated) {
			return docs[i].LastUpdated.After(docs[j].LastUpdated)
		}
		return docs[i].ID > docs[j].ID
	})
}
