// Package articlestore keeps the articles of the current page indexed by id,
// so every view reading an article reads the same record.
package articlestore

import (
	"errors"
	"sync"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

var ErrNotFound = errors.New("article not found")

type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*model.Article
	page  int
	pages int
}

func New() *Store {
	return &Store{byID: map[string]*model.Article{}, page: 1, pages: 1}
}

// ReplacePage drops whatever was held and keeps only the given page.
func (s *Store) ReplacePage(p *model.ArticlePage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.byID = make(map[string]*model.Article, len(p.Articles))
	for _, a := range p.Articles {
		if a == nil {
			continue
		}
		if _, dup := s.byID[a.ID]; !dup {
			s.order = append(s.order, a.ID)
		}
		s.byID[a.ID] = a.Clone()
	}

	s.page, s.pages = p.Page, p.Pages
	if s.page < 1 {
		s.page = 1
	}
	if s.pages < 1 {
		s.pages = 1
	}
}

func (s *Store) Pagination() (page, pages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.page, s.pages
}

// Get returns a copy of the article.
func (s *Store) Get(id string) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	return a.Clone(), nil
}

// All returns copies of the held articles in page order.
func (s *Store) All() []*model.Article {
	return s.Filter(func(*model.Article) bool { return true })
}

func (s *Store) Filter(keep func(*model.Article) bool) []*model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Article, 0, len(s.order))
	for _, id := range s.order {
		if a := s.byID[id]; keep(a) {
			out = append(out, a.Clone())
		}
	}

	return out
}

func (s *Store) Count(match func(*model.Article) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, id := range s.order {
		if match(s.byID[id]) {
			n++
		}
	}

	return n
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Update applies fn to the stored record in place.
func (s *Store) Update(id string, fn func(*model.Article)) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(a)

	return a.Clone(), nil
}

// Append adds an article at the end of the page, replacing any record with
// the same id.
func (s *Store) Append(a *model.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = a.Clone()
}

func (s *Store) Replace(a *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[a.ID]; !ok {
		return ErrNotFound
	}
	s.byID[a.ID] = a.Clone()

	return nil
}

func (s *Store) Remove(id string) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.byID, id)

	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return a, nil
}
