package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

var (
	errArticleNotFound = errors.New("article not found.")
	errUserNotFound    = errors.New("user not found.")
	errEmailTaken      = errors.New("email already registered.")
)

// store is the in-memory persistence of the fake API.
type store struct {
	mu       sync.RWMutex
	articles []*model.Article
	users    []*storedUser
	now      func() time.Time
}

type storedUser struct {
	model.User
	hash []byte
}

// Fixture is a user seeded into a fresh store.
type Fixture struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Interests []string
}

// DefaultFixtures are the users a fresh server knows about.
var DefaultFixtures = []Fixture{
	{ID: "100", FirstName: "Peter", LastName: "Parker", Email: "peter@example.com", Phone: "+1 555 010 0100", Password: "Passw0rd!", Interests: []string{"Technology"}},
	{ID: "200", FirstName: "Julia", LastName: "Roberts", Email: "julia@example.com", Phone: "+1 555 020 0200", Password: "Passw0rd!", Interests: []string{"Travel", "Food"}},
}

func newStore(fixtures []Fixture, seedArticles bool) (*store, error) {
	s := &store{now: time.Now}

	for _, f := range fixtures {
		hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		now := s.now()
		s.users = append(s.users, &storedUser{
			User: model.User{
				ID: f.ID, FirstName: f.FirstName, LastName: f.LastName,
				Email: f.Email, Phone: f.Phone, Interests: f.Interests,
				CreatedAt: now, UpdatedAt: now,
			},
			hash: hash,
		})
	}

	if seedArticles && len(fixtures) > 0 {
		// Article fixture data
		titles := []string{"Hi", "sup", "alo", "bonjour", "whats up"}
		for i, title := range titles {
			s.articles = append(s.articles, &model.Article{
				ID:        uuid.NewString(),
				Title:     title,
				Content:   "# " + title,
				Category:  model.Categories[i%len(model.Categories)],
				Tags:      []string{},
				AuthorID:  fixtures[i%len(fixtures)].ID,
				CreatedAt: s.now().Add(time.Duration(i) * time.Minute),
			})
		}
	}

	return s, nil
}

func (s *store) dbGetUser(id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			user := u.User

			return &user, nil
		}
	}

	return nil, errUserNotFound
}

func (s *store) dbAuthenticate(emailOrPhone, password string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.TrimSpace(emailOrPhone)
	for _, u := range s.users {
		if !strings.EqualFold(u.Email, key) && u.Phone != key {
			continue
		}
		if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
			return nil, errUserNotFound
		}
		user := u.User

		return &user, nil
	}

	return nil, errUserNotFound
}

func (s *store) dbNewUser(p model.SignupPayload) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, p.Email) {
			return nil, errEmailTaken
		}
	}

	now := s.now()
	u := &storedUser{
		User: model.User{
			ID: uuid.NewString(), FirstName: p.FirstName, LastName: p.LastName,
			Email: p.Email, Phone: p.Phone, DOB: p.DOB, Interests: p.Interests,
			CreatedAt: now, UpdatedAt: now,
		},
		hash: hash,
	}
	s.users = append(s.users, u)
	user := u.User

	return &user, nil
}

// errWrongPassword is returned when a profile update carries a current
// password that does not match.
var errWrongPassword = errors.New("Current password is incorrect")

func (s *store) dbUpdateUser(id string, data model.UserData) (*model.User, error) {
	var hash []byte
	if data.CurrentPassword != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(data.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID != id {
			continue
		}
		if data.CurrentPassword != "" {
			if bcrypt.CompareHashAndPassword(u.hash, []byte(data.CurrentPassword)) != nil {
				return nil, errWrongPassword
			}
			u.hash = hash
		}
		u.FirstName, u.LastName, u.Phone = data.FirstName, data.LastName, data.Phone
		if data.Interests != nil {
			u.Interests = data.Interests
		}
		u.UpdatedAt = s.now()
		user := u.User

		return &user, nil
	}

	return nil, errUserNotFound
}

func (s *store) dbNewArticle(article *model.Article) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article.ID = uuid.NewString()
	article.CreatedAt = s.now()
	s.articles = append(s.articles, article)

	return article.ID, nil
}

func (s *store) dbGetArticle(id string) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.articles {
		if a.ID == id {
			return a.Clone(), nil
		}
	}

	return nil, errArticleNotFound
}

func (s *store) dbUpdateArticle(id string, fn func(*model.Article)) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.articles {
		if a.ID == id {
			fn(a)

			return a.Clone(), nil
		}
	}

	return nil, errArticleNotFound
}

func (s *store) dbRemoveArticle(id string) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.articles {
		if a.ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)

			return a, nil
		}
	}

	return nil, errArticleNotFound
}

// dbListArticles returns one page, newest first. authorID filters when set.
func (s *store) dbListArticles(authorID string, page, limit int) ([]*model.Article, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*model.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if authorID == "" || a.AuthorID == authorID {
			matched = append(matched, a.Clone())
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	pages := (len(matched) + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}

	start := (page - 1) * limit
	if start >= len(matched) {
		return []*model.Article{}, pages
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], pages
}
