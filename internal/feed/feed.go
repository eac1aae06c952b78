// Package feed drives the home page: one page of articles, the reactions on
// them and the article open in detail.
//
// Reactions are sent first and applied locally only once the API accepted
// them, so a failed request leaves the page exactly as it was.
package feed

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
)

var (
	ErrNotFound  = articlestore.ErrNotFound
	ErrBlocked   = errors.New("article is blocked")
	ErrNoSession = errors.New("not signed in")
)

// API is the part of the remote API the feed calls.
type API interface {
	ListArticles(ctx context.Context, p client.ListParams) (*model.ArticlePage, error)
	React(ctx context.Context, r client.Reaction, articleID string, establish bool) error
}

// Identity names the current user.
type Identity interface {
	UserID() string
}

type Controller struct {
	api      API
	who      Identity
	store    *articlestore.Store
	notifier notify.Notifier
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	selected string
	limit    int
}

type Option func(*Controller)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithPageSize sets the limit used when FetchPage is given none.
func WithPageSize(n int) Option {
	return func(c *Controller) { c.limit = n }
}

func New(api API, who Identity, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		who:      who,
		store:    articlestore.New(),
		notifier: notify.Nop{},
		logger:   zap.NewNop().Sugar(),
		limit:    10,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchPage replaces the held page. limit <= 0 uses the configured page size.
func (c *Controller) FetchPage(ctx context.Context, page, limit int) error {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = c.limit
	}

	p, err := c.api.ListArticles(ctx, client.ListParams{Page: page, Limit: limit})
	if err != nil {
		c.fail("fetch articles", err, "Failed to load articles")

		return err
	}

	c.store.ReplacePage(p)

	c.mu.Lock()
	if _, err := c.store.Get(c.selected); err != nil {
		c.selected = ""
	}
	c.mu.Unlock()

	c.logger.Debugw("feed page loaded", "page", p.Page, "pages", p.Pages, "count", len(p.Articles))

	return nil
}

func (c *Controller) Like(ctx context.Context, id string) error {
	return c.react(ctx, client.ReactionLike, id, (*model.Article).LikedBy, (*model.Article).ToggleLike)
}

func (c *Controller) Dislike(ctx context.Context, id string) error {
	return c.react(ctx, client.ReactionDislike, id, (*model.Article).DislikedBy, (*model.Article).ToggleDislike)
}

// ToggleBlock blocks or unblocks the article. Blocking the open article
// closes it.
func (c *Controller) ToggleBlock(ctx context.Context, id string) error {
	if err := c.react(ctx, client.ReactionBlock, id, (*model.Article).BlockedFor, (*model.Article).ToggleBlock); err != nil {
		return err
	}

	a, err := c.store.Get(id)
	if err != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == id && a.BlockedFor(c.who.UserID()) {
		c.selected = ""
	}

	return nil
}

func (c *Controller) react(
	ctx context.Context,
	r client.Reaction,
	id string,
	member func(*model.Article, string) bool,
	toggle func(*model.Article, string),
) error {
	uid := c.who.UserID()
	if uid == "" {
		return ErrNoSession
	}

	a, err := c.store.Get(id)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r, id, err)
	}
	establish := !member(a, uid)

	if err := c.api.React(ctx, r, id, establish); err != nil {
		c.fail(string(r), err, fmt.Sprintf("Failed to update %s", r))

		return err
	}

	if _, err := c.store.Update(id, func(a *model.Article) { toggle(a, uid) }); err != nil {
		// the page was replaced while the request was in flight
		c.logger.Debugw("reacted article left the page", "article", id, "reaction", r)
	}

	return nil
}

// Open shows the article in detail. Blocked articles cannot be opened.
func (c *Controller) Open(id string) error {
	a, err := c.store.Get(id)
	if err != nil {
		return err
	}
	if a.BlockedFor(c.who.UserID()) {
		return ErrBlocked
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = id

	return nil
}

// Reset drops the held page and the open article.
func (c *Controller) Reset() {
	c.store.ReplacePage(&model.ArticlePage{})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = ""
}

// Selected returns the open article, read from the same record the list
// shows.
func (c *Controller) Selected() (*model.Article, bool) {
	c.mu.Lock()
	id := c.selected
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

// Visible lists the page minus the articles the user blocked.
func (c *Controller) Visible() []*model.Article {
	uid := c.who.UserID()

	return c.store.Filter(func(a *model.Article) bool { return !a.BlockedFor(uid) })
}

func (c *Controller) BlockedCount() int {
	uid := c.who.UserID()

	return c.store.Count(func(a *model.Article) bool { return a.BlockedFor(uid) })
}

// Get returns any article on the page, blocked or not.
func (c *Controller) Get(id string) (*model.Article, error) {
	return c.store.Get(id)
}

func (c *Controller) Pagination() (page, pages int) {
	return c.store.Pagination()
}

func (c *Controller) fail(op string, err error, fallback string) {
	c.logger.Errorw("feed request failed", "op", op, "err", err)
	c.notifier.Error(client.MessageOf(err, fallback))
}
