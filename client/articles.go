package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

// ListParams selects one page of the listing. Creator limits it to the
// session user's own articles.
type ListParams struct {
	Page    int
	Limit   int
	Creator bool
}

func (p ListParams) query() string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Creator {
		q.Set("isCreator", "true")
	}

	return q.Encode()
}

func (c *Client) ListArticles(ctx context.Context, p ListParams) (*model.ArticlePage, error) {
	page := &model.ArticlePage{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/articles?" + p.query()}, page); err != nil {
		return nil, err
	}

	return page, nil
}

// File is an image picked for upload.
type File struct {
	Name string
	Data []byte
}

// ArticleForm is the multipart payload for creating or editing an article.
type ArticleForm struct {
	Title    string
	Content  string
	Category model.Category
	Tags     []string
	Image    *File

	// RemoveImage asks an edit to drop the stored image. Ignored when Image
	// is set.
	RemoveImage bool
}

// Encode writes the form as multipart/form-data and returns the body and
// its content type.
func (f ArticleForm) Encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"title", f.Title},
		{"content", f.Content},
		{"category", string(f.Category)},
		{"tags", string(rawTags)},
	}
	if f.RemoveImage && f.Image == nil {
		fields = append(fields, [2]string{"removeImage", "true"})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}

	if f.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, f.Image.Name))
		h.Set("Content-Type", mimetype.Detect(f.Image.Data).String())
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

// ArticleResult is the API's answer to create and edit.
type ArticleResult struct {
	Article *model.Article `json:"article"`
	Message string         `json:"message"`
}

func (c *Client) CreateArticle(ctx context.Context, f ArticleForm) (*ArticleResult, error) {
	return c.submitArticle(ctx, http.MethodPost, "/article", f)
}

func (c *Client) UpdateArticle(ctx context.Context, id string, f ArticleForm) (*ArticleResult, error) {
	return c.submitArticle(ctx, http.MethodPatch, "/article/"+url.PathEscape(id), f)
}

func (c *Client) submitArticle(ctx context.Context, method, path string, f ArticleForm) (*ArticleResult, error) {
	body, contentType, err := f.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding article form: %w", err)
	}

	res := &ArticleResult{}
	if err := c.do(ctx, request{method: method, path: path, body: body, contentType: contentType}, res); err != nil {
		return nil, err
	}
	if res.Article == nil {
		return nil, ErrInvalidResponse
	}

	return res, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/article/" + url.PathEscape(id)}, nil)
}

// Reaction names a per-user relationship with an article.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
	ReactionBlock   Reaction = "block"
)

// React establishes (PATCH) or reverses (DELETE) the reaction.
func (c *Client) React(ctx context.Context, r Reaction, articleID string, establish bool) error {
	method := http.MethodDelete
	if establish {
		method = http.MethodPatch
	}

	return c.do(ctx, request{method: method, path: "/" + string(r) + "/" + url.PathEscape(articleID)}, nil)
}
