// Package authoring drives the "my articles" page: listing the user's own
// articles, the create and edit forms, and deletion behind a confirmation.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/articlehub/client"
	"github.com/SergeyParamoshkin/articlehub/internal/articlestore"
	"github.com/SergeyParamoshkin/articlehub/internal/model"
	"github.com/SergeyParamoshkin/articlehub/internal/notify"
	"github.com/SergeyParamoshkin/articlehub/internal/validation"
)

var (
	ErrNotFound        = articlestore.ErrNotFound
	ErrNotEditing      = errors.New("no article is being edited")
	ErrNotListing      = errors.New("finish or cancel the open form first")
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
)

// State is one of ListState, CreateState or EditState.
type State interface {
	state()
}

type ListState struct{}

type CreateState struct {
	Draft *Draft
}

// EditState keeps the article as it was when editing began.
type EditState struct {
	Draft    *Draft
	Original *model.Article
}

func (ListState) state()   {}
func (CreateState) state() {}
func (EditState) state()   {}

// API is the part of the remote API authoring calls.
type API interface {
	ListArticles(ctx context.Context, p client.ListParams) (*model.ArticlePage, error)
	CreateArticle(ctx context.Context, f client.ArticleForm) (*client.ArticleResult, error)
	UpdateArticle(ctx context.Context, id string, f client.ArticleForm) (*client.ArticleResult, error)
	DeleteArticle(ctx context.Context, id string) error
}

type Controller struct {
	api      API
	validate *validation.Validator
	store    *articlestore.Store
	notifier notify.Notifier
	logger   *zap.SugaredLogger
	limit    int

	mu      sync.Mutex
	state   State
	pending string
}

type Option func(*Controller)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithPageSize(n int) Option {
	return func(c *Controller) { c.limit = n }
}

func New(api API, v *validation.Validator, opts ...Option) *Controller {
	if v == nil {
		v = validation.New()
	}

	c := &Controller{
		api:      api,
		validate: v,
		store:    articlestore.New(),
		notifier: notify.Nop{},
		logger:   zap.NewNop().Sugar(),
		limit:    10,
		state:    ListState{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// FetchPage loads one page of the user's own articles.
func (c *Controller) FetchPage(ctx context.Context, page, limit int) error {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = c.limit
	}

	p, err := c.api.ListArticles(ctx, client.ListParams{Page: page, Limit: limit, Creator: true})
	if err != nil {
		c.fail("fetch own articles", err, "Failed to load your articles")

		return err
	}
	c.store.ReplacePage(p)

	return nil
}

func (c *Controller) Articles() []*model.Article {
	return c.store.All()
}

func (c *Controller) Pagination() (page, pages int) {
	return c.store.Pagination()
}

// StartCreate opens an empty form.
func (c *Controller) StartCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.(ListState); !ok {
		return ErrNotListing
	}
	c.state = CreateState{Draft: NewDraft()}

	return nil
}

// Reset drops the held list, any open form and any pending delete.
func (c *Controller) Reset() {
	c.store.ReplacePage(&model.ArticlePage{})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ListState{}
	c.pending = ""
}

// StartEdit opens the form on a copy of one listed article.
func (c *Controller) StartEdit(id string) error {
	a, err := c.store.Get(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.(ListState); !ok {
		return ErrNotListing
	}
	c.state = EditState{Draft: DraftFrom(a), Original: a}

	return nil
}

// EditDraft runs fn on the open draft.
func (c *Controller) EditDraft(fn func(d *Draft) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := draftOf(c.state)
	if d == nil {
		return ErrNotEditing
	}

	return fn(d)
}

// Draft returns a copy of the open draft.
func (c *Controller) Draft() (*Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := draftOf(c.state)
	if d == nil {
		return nil, ErrNotEditing
	}
	cp := *d
	cp.Tags = append([]string{}, d.Tags...)

	return &cp, nil
}

// Cancel drops the draft and goes back to the list.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = ListState{}
}

// Save validates the draft and submits it. On failure the form stays open
// with the draft as it was.
func (c *Controller) Save(ctx context.Context) (*model.Article, error) {
	c.mu.Lock()
	st := c.state
	d := draftOf(st)
	if d == nil {
		c.mu.Unlock()

		return nil, ErrNotEditing
	}
	form, check := d.Form(), d.form()
	c.mu.Unlock()

	if err := c.validate.Validate(check); err != nil {
		return nil, err
	}

	var (
		res *client.ArticleResult
		err error
	)
	switch st := st.(type) {
	case CreateState:
		res, err = c.api.CreateArticle(ctx, form)
	case EditState:
		res, err = c.api.UpdateArticle(ctx, st.Original.ID, form)
	}
	if err != nil {
		c.fail("save article", err, "Failed to save article")

		return nil, err
	}

	if _, ok := st.(EditState); ok {
		if err := c.store.Replace(res.Article); err != nil {
			c.store.Append(res.Article)
		}
	} else {
		c.store.Append(res.Article)
	}

	c.mu.Lock()
	c.state = ListState{}
	c.mu.Unlock()

	if res.Message != "" {
		c.notifier.Success(res.Message)
	}
	c.logger.Infow("article saved", "article", res.Article.ID)

	return res.Article, nil
}

// RequestDelete asks for confirmation before deleting id.
func (c *Controller) RequestDelete(id string) error {
	if _, err := c.store.Get(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = id

	return nil
}

// PendingDelete returns the article awaiting confirmation.
func (c *Controller) PendingDelete() (*model.Article, bool) {
	c.mu.Lock()
	id := c.pending
	c.mu.Unlock()

	if id == "" {
		return nil, false
	}
	a, err := c.store.Get(id)
	if err != nil {
		return nil, false
	}

	return a, true
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = ""
}

// ConfirmDelete deletes the pending article. A failed request keeps the
// confirmation open.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pending
	c.mu.Unlock()

	if id == "" {
		return ErrNoPendingDelete
	}

	if err := c.api.DeleteArticle(ctx, id); err != nil {
		c.fail("delete article", err, "Failed to delete article")

		return fmt.Errorf("delete %s: %w", id, err)
	}

	_, _ = c.store.Remove(id)

	c.mu.Lock()
	if c.pending == id {
		c.pending = ""
	}
	c.mu.Unlock()

	c.notifier.Success("Article deleted")

	return nil
}

func draftOf(s State) *Draft {
	switch s := s.(type) {
	case CreateState:
		return s.Draft
	case EditState:
		return s.Draft
	default:
		return nil
	}
}

func (c *Controller) fail(op string, err error, fallback string) {
	c.logger.Errorw("authoring request failed", "op", op, "err", err)
	c.notifier.Error(client.MessageOf(err, fallback))
}
