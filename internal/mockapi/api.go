package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

func currentUser(r *http.Request) *model.User {
	// SessionCtx guarantees the value for every route that reads it.
	// nolint
	return r.Context().Value(ctxKeyUser).(*model.User)
}

func contextArticle(r *http.Request) *model.Article {
	// nolint
	return r.Context().Value(ctxKeyArticle).(*model.Article)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		s.logger.Errorw("rendering response", "err", err)
	}
}

// Login checks the credentials and starts a session cookie.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	data := &LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))

		return
	}

	user, err := s.db.dbAuthenticate(data.EmailOrPhone, data.Password)
	if err != nil {
		s.renderErr(w, r, ErrBadLogin)

		return
	}

	if err := s.issueSession(w, user.ID); err != nil {
		s.renderErr(w, r, ErrInternal(err))

		return
	}

	s.respond(w, r, NewUserPayloadResponse(user, "Logged in successfully"))
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	data := &SignupRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))

		return
	}

	user, err := s.db.dbNewUser(*data.SignupPayload)
	if errors.Is(err, errEmailTaken) {
		s.renderErr(w, r, ErrConflict(err))

		return
	}
	if err != nil {
		s.renderErr(w, r, ErrInternal(err))

		return
	}

	if err := s.issueSession(w, user.ID); err != nil {
		s.renderErr(w, r, ErrInternal(err))

		return
	}

	render.Status(r, http.StatusCreated)
	s.respond(w, r, NewUserPayloadResponse(user, "Account created"))
}

func (s *Server) Verify(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, NewUserPayloadResponse(currentUser(r), ""))
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	s.respond(w, r, &MessageResponse{Message: "Logged out"})
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	data := &ProfileRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))

		return
	}

	user, err := s.db.dbUpdateUser(currentUser(r).ID, *data.UserData)
	if errors.Is(err, errWrongPassword) {
		s.renderErr(w, r, ErrInvalidRequest(err))

		return
	}
	if err != nil {
		s.renderErr(w, r, ErrInternal(err))

		return
	}

	s.respond(w, r, NewUserPayloadResponse(user, "Profile updated"))
}

// ListArticles serves one page; isCreator=true limits it to the caller's
// own articles.
func (s *Server) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, limit := queryInt(r, "page", 1), queryInt(r, "limit", 10)

	authorID := ""
	if r.URL.Query().Get("isCreator") == "true" {
		authorID = currentUser(r).ID
	}

	articles, pages := s.db.dbListArticles(authorID, page, limit)
	s.respond(w, r, s.newArticleListResponse(articles, page, pages))
}

// CreateArticle persists the posted Article and returns it
// back to the client as an acknowledgement.
func (s *Server) CreateArticle(w http.ResponseWriter, r *http.Request) {
	data, err := bindArticleRequest(r)
	if err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))

		return
	}

	article := &model.Article{
		AuthorID:  currentUser(r).ID,
		Likes:     []string{},
		Dislikes:  []string{},
		BlockedBy: []string{},
	}
	data.apply(article)

	if _, err := s.db.dbNewArticle(article); err != nil {
		s.renderErr(w, r, ErrInternal(err))

		return
	}

	render.Status(r, http.StatusCreated)
	s.respond(w, r, &ArticleResponse{Article: article.Clone(), Message: "Article created successfully"})
}

// UpdateArticle updates an existing Article owned by the caller.
func (s *Server) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	article := contextArticle(r)
	if article.AuthorID != currentUser(r).ID {
		s.renderErr(w, r, ErrForbidden)

		return
	}

	data, err := bindArticleRequest(r)
	if err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))

		return
	}

	updated, err := s.db.dbUpdateArticle(article.ID, data.apply)
	if err != nil {
		s.renderErr(w, r, ErrNotFound)

		return
	}

	s.respond(w, r, &ArticleResponse{Article: updated, Message: "Article updated successfully"})
}

// DeleteArticle removes an existing Article owned by the caller.
func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article := contextArticle(r)
	if article.AuthorID != currentUser(r).ID {
		s.renderErr(w, r, ErrForbidden)

		return
	}

	if _, err := s.db.dbRemoveArticle(article.ID); err != nil {
		s.renderErr(w, r, ErrNotFound)

		return
	}

	s.respond(w, r, &MessageResponse{Message: "Article deleted"})
}

// reaction builds the PATCH (establish) or DELETE (reverse) handler for one
// reaction set.
func (s *Server) reaction(apply func(a *model.Article, userID string, establish bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r).ID
		establish := r.Method == http.MethodPatch

		updated, err := s.db.dbUpdateArticle(contextArticle(r).ID, func(a *model.Article) {
			apply(a, userID, establish)
		})
		if err != nil {
			s.renderErr(w, r, ErrNotFound)

			return
		}

		s.respond(w, r, &ArticleResponse{Article: updated})
	}
}

func applyLike(a *model.Article, userID string, establish bool) {
	if establish != a.LikedBy(userID) {
		a.ToggleLike(userID)
	}
}

func applyDislike(a *model.Article, userID string, establish bool) {
	if establish != a.DislikedBy(userID) {
		a.ToggleDislike(userID)
	}
}

func applyBlock(a *model.Article, userID string, establish bool) {
	if establish != a.BlockedFor(userID) {
		a.ToggleBlock(userID)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}

	return v
}
