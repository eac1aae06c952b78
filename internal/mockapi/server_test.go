package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := New()
	require.NoError(t, err)

	return s
}

func do(s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	return rec
}

func loginAs(t *testing.T, s *Server, email string) *http.Cookie {
	t.Helper()

	rec := do(s, http.MethodPost, "/auth/login", `{"emailOrPhone":"`+email+`","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")

	return nil
}

func TestPing(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestArticlesNeedSession(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/articles", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authenticated")
}

func TestLoginByPhone(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/auth/login", `{"emailOrPhone":"+1 555 010 0100","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out UserPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "100", out.User.ID)
	assert.Empty(t, out.User.Password)
	assert.Equal(t, "Logged in successfully", out.Message)
}

func TestLoginRejected(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/auth/login", `{"emailOrPhone":"peter@example.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestVerify(t *testing.T) {
	s := newTestServer(t)
	cookie := loginAs(t, s, "julia@example.com")

	rec := do(s, http.MethodGet, "/auth/verify", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Julia")

	rec = do(s, http.MethodGet, "/auth/verify", "", &http.Cookie{Name: sessionCookie, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListArticlesCreatorFilter(t *testing.T) {
	s := newTestServer(t)
	cookie := loginAs(t, s, "peter@example.com")

	var all, own ArticleListResponse
	rec := do(s, http.MethodGet, "/articles?page=1&limit=10", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))

	rec = do(s, http.MethodGet, "/articles?page=1&limit=10&isCreator=true", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &own))

	assert.Len(t, all.Articles, 5)
	assert.Len(t, own.Articles, 3)
	for _, a := range own.Articles {
		assert.Equal(t, "100", a.AuthorID)
	}
}

func TestReactionIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	cookie := loginAs(t, s, "peter@example.com")
	id := s.db.articles[0].ID

	for i := 0; i < 2; i++ {
		rec := do(s, http.MethodPatch, "/like/"+id, "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var out ArticleResponse
	rec := do(s, http.MethodPatch, "/dislike/"+id, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Article.Likes)
	assert.Equal(t, []string{"100"}, out.Article.Dislikes)

	rec = do(s, http.MethodDelete, "/dislike/"+id, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Article.Dislikes)
}

func TestDeleteOthersArticleForbidden(t *testing.T) {
	s := newTestServer(t)
	cookie := loginAs(t, s, "julia@example.com")

	var peters string
	for _, a := range s.db.articles {
		if a.AuthorID == "100" {
			peters = a.ID

			break
		}
	}

	rec := do(s, http.MethodDelete, "/article/"+peters, "", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(s, http.MethodDelete, "/article/missing", "", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartArticle(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func TestUpdateArticleRemovesImage(t *testing.T) {
	s := newTestServer(t)
	cookie := loginAs(t, s, "peter@example.com")

	var id string
	for _, a := range s.db.articles {
		if a.AuthorID == "100" {
			id = a.ID

			break
		}
	}

	patch := func(fields map[string]string, image []byte) ArticleResponse {
		body, ct := multipartArticle(t, fields, image)
		req := httptest.NewRequest(http.MethodPatch, "/article/"+id, body)
		req.Header.Set("Content-Type", ct)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out ArticleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

		return out
	}

	fields := map[string]string{"title": "Hi", "content": "body", "category": "Technology"}
	out := patch(fields, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.True(t, strings.HasPrefix(out.Article.Image, "data:image/png;base64,"))

	out = patch(fields, nil)
	assert.NotEmpty(t, out.Article.Image, "no image field keeps the stored one")

	fields["removeImage"] = "true"
	out = patch(fields, nil)
	assert.Empty(t, out.Article.Image)
}

func TestRoutesDoc(t *testing.T) {
	doc := newTestServer(t).RoutesDoc()

	assert.Contains(t, doc, "Routes served by the articlehub fake API.")
	assert.Contains(t, doc, "/auth")
}

func TestCountRequestsByMethodAndStatus(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	s, err := New(WithMeter(provider.Meter("test")))
	require.NoError(t, err)

	do(s, http.MethodGet, "/ping", "")
	do(s, http.MethodGet, "/ping", "")
	do(s, http.MethodGet, "/articles", "")
	do(s, http.MethodPost, "/auth/login", `{"emailOrPhone":"peter@example.com","password":"nope"}`)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != CompletedCountName {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				method, _ := dp.Attributes.Value(attribute.Key("method"))
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				got[method.AsString()+" "+status.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"GET 200":  2,
		"GET 401":  1,
		"POST 401": 1,
	}, got)
}

func TestCountRequestsWithoutMeter(t *testing.T) {
	s := newTestServer(t)

	assert.Nil(t, s.completed)
	assert.Equal(t, "pong", do(s, http.MethodGet, "/ping", "").Body.String())
}
