// Package mockapi is an in-memory stand-in for the article platform's REST
// API. It backs the client tests and `articlehub mockapi` for local runs.
//
//	$ curl http://localhost:3333/ping
//	pong
//
//	$ curl -c jar -d '{"emailOrPhone":"peter@example.com","password":"Passw0rd!"}' http://localhost:3333/auth/login
//	{"user":{"id":"100","firstName":"Peter",...},"message":"Logged in successfully"}
//
//	$ curl -b jar 'http://localhost:3333/articles?page=1&limit=2'
//	{"articles":[...],"page":1,"pages":3}
//
//	$ curl -b jar -X PATCH http://localhost:3333/like/<id>
package mockapi

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const CompletedCountName = "http/server/completed_count"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

type Server struct {
	db         *store
	logger     *zap.SugaredLogger
	secret     []byte
	sessionTTL time.Duration
	router     chi.Router

	meter     metric.Meter
	completed metric.Int64Counter

	fixtures     []Fixture
	seedArticles bool
}

type Option func(*Server)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = l }
}

// WithFixtures replaces the seeded users. seedArticles controls whether a
// handful of fixture articles is created for them.
func WithFixtures(fixtures []Fixture, seedArticles bool) Option {
	return func(s *Server) {
		s.fixtures, s.seedArticles = fixtures, seedArticles
	}
}

func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) { s.sessionTTL = d }
}

// WithMeter counts served requests by HTTP method and response status.
func WithMeter(m metric.Meter) Option {
	return func(s *Server) { s.meter = m }
}

func New(opts ...Option) (*Server, error) {
	s := &Server{
		logger:       zap.NewNop().Sugar(),
		sessionTTL:   24 * time.Hour,
		fixtures:     DefaultFixtures,
		seedArticles: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.secret = make([]byte, 32)
	if _, err := rand.Read(s.secret); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}

	db, err := newStore(s.fixtures, s.seedArticles)
	if err != nil {
		return nil, fmt.Errorf("seeding store: %w", err)
	}
	s.db = db

	if s.meter != nil {
		s.completed, err = s.meter.Int64Counter(CompletedCountName,
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating request counter: %w", err)
		}
	}
	s.router = s.routes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.Logger)
	r.Use(s.CountRequests)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			s.logger.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Debugw("ping with middle")
		_, err := w.Write([]byte("pong"))
		if err != nil {
			s.logger.Errorw(err.Error())
		}
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.Login)
		r.Post("/signup", s.Signup)
		r.Post("/logout", s.Logout)
		r.With(s.SessionCtx).Get("/verify", s.Verify)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.SessionCtx)

		r.Put("/profile", s.UpdateProfile)
		r.Get("/articles", s.ListArticles) // GET /articles?page=1&limit=10&isCreator=true

		r.Post("/article", s.CreateArticle) // POST /article (multipart)
		r.Route("/article/{articleID}", func(r chi.Router) {
			r.Use(s.ArticleCtx)
			r.Patch("/", s.UpdateArticle)  // PATCH /article/123 (multipart)
			r.Delete("/", s.DeleteArticle) // DELETE /article/123
		})

		reactions := map[string]http.HandlerFunc{
			"/like/{articleID}":    s.reaction(applyLike),
			"/dislike/{articleID}": s.reaction(applyDislike),
			"/block/{articleID}":   s.reaction(applyBlock),
		}
		for pattern, h := range reactions {
			r.With(s.ArticleCtx).Patch(pattern, h)
			r.With(s.ArticleCtx).Delete(pattern, h)
		}
	})

	return r
}

// RoutesDoc renders the route table as markdown.
func (s *Server) RoutesDoc() string {
	return docgen.MarkdownRoutesDoc(s.router, docgen.MarkdownOpts{
		ProjectPath: "github.com/SergeyParamoshkin/articlehub",
		Intro:       "Routes served by the articlehub fake API.",
	})
}
