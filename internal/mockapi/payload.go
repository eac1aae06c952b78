package mockapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

//--
// Request and Response payloads for the REST api.
//--

const maxUploadBytes = 8 << 20

// ArticleRequest is the multipart payload for creating and editing articles.
type ArticleRequest struct {
	Title    string
	Content  string
	Category model.Category
	Tags     []string

	// Image is a data URL built from the uploaded file, empty when no file
	// was sent.
	Image       string
	RemoveImage bool
}

func bindArticleRequest(r *http.Request) (*ArticleRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}

	a := &ArticleRequest{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Content:  strings.TrimSpace(r.FormValue("content")),
		Category: model.Category(r.FormValue("category")),

		RemoveImage: r.FormValue("removeImage") == "true",
	}
	if a.Title == "" || a.Content == "" {
		return nil, errors.New("title and content are required")
	}
	if !a.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q", a.Category)
	}

	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &a.Tags); err != nil {
			return nil, fmt.Errorf("tags must be a JSON array: %w", err)
		}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}

	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, err
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		a.Image = "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	return a, nil
}

func (a *ArticleRequest) apply(article *model.Article) {
	article.Title = a.Title
	article.Content = a.Content
	article.Category = a.Category
	article.Tags = a.Tags
	switch {
	case a.Image != "":
		article.Image = a.Image
	case a.RemoveImage:
		article.Image = ""
	}
}

type LoginRequest struct {
	*model.LoginPayload
}

func (l *LoginRequest) Bind(r *http.Request) error {
	if l.LoginPayload == nil || strings.TrimSpace(l.EmailOrPhone) == "" || l.Password == "" {
		return errors.New("email or phone and password are required")
	}

	return nil
}

type SignupRequest struct {
	*model.SignupPayload
}

func (s *SignupRequest) Bind(r *http.Request) error {
	if s.SignupPayload == nil || s.Email == "" || s.Password == "" || s.FirstName == "" {
		return errors.New("missing required signup fields")
	}

	return nil
}

type ProfileRequest struct {
	*model.UserData
}

func (p *ProfileRequest) Bind(r *http.Request) error {
	if p.UserData == nil || p.FirstName == "" || p.LastName == "" || p.Phone == "" {
		return errors.New("missing required profile fields")
	}
	if p.CurrentPassword != "" && len(p.NewPassword) < 8 {
		return errors.New("new password must be at least 8 characters")
	}

	return nil
}

// UserPayload never carries the password back to the client.
type UserPayload struct {
	User    *model.User `json:"user"`
	Message string      `json:"message,omitempty"`
}

func NewUserPayloadResponse(user *model.User, msg string) *UserPayload {
	u := *user
	u.Password = ""

	return &UserPayload{User: &u, Message: msg}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleResponse is the response payload for a single Article.
type ArticleResponse struct {
	Article *model.Article `json:"article"`
	Message string         `json:"message,omitempty"`
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ArticleListResponse is one page of articles with their authors expanded.
type ArticleListResponse struct {
	Articles []*model.Article `json:"articles"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

func (s *Server) newArticleListResponse(articles []*model.Article, page, pages int) *ArticleListResponse {
	for _, a := range articles {
		if user, _ := s.db.dbGetUser(a.AuthorID); user != nil {
			a.Author = &model.Author{ID: user.ID, FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
		}
	}

	return &ArticleListResponse{Articles: articles, Page: page, Pages: pages}
}

func (rd *ArticleListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (m *MessageResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

//--
// Error response payloads & renderers
//--

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`            // user-level status message
	Message    string `json:"message,omitempty"` // application-level error message
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		Message:        err.Error(),
	}
}

func ErrConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		Message:        err.Error(),
	}
}

func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal error.",
		Message:        "Something went wrong",
	}
}

var (
	ErrNotFound     = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found.", Message: "Article not found"}
	ErrUnauthorized = &ErrResponse{HTTPStatusCode: http.StatusUnauthorized, StatusText: "Unauthorized.", Message: "Not authenticated"}
	ErrBadLogin     = &ErrResponse{HTTPStatusCode: http.StatusUnauthorized, StatusText: "Unauthorized.", Message: "Invalid credentials"}
	ErrForbidden    = &ErrResponse{HTTPStatusCode: http.StatusForbidden, StatusText: "Forbidden.", Message: "You can only change your own articles"}
)
