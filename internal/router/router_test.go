package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aima-hub/internal/config"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/provider"
	"github.com/aima-hub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type apiEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
		HasNext    bool  `json:"hasNext"`
		HasPrev    bool  `json:"hasPrev"`
	} `json:"pagination"`
}

type apiArticle struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Views       int64    `json:"views"`
	ReadTime    int      `json:"readTime"`
	PublishedAt *string  `json:"publishedAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Author      struct {
		Name string `json:"name"`
	} `json:"author"`
}

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Store:  config.StoreConfig{Backend: "memory"},
		Admin: config.AdminConfig{
			Password:         "admin-pass",
			Token:            "static-admin-token",
			JWTSecret:        "router-test-secret",
			TokenExpireHours: 1,
		},
		Site: config.SiteConfig{Title: "AIMA Media", AuthorName: "AIMA"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3001"}},
		Security: config.SecurityConfig{
			LoginRateLimit:      config.RateLimitConfig{WindowSeconds: 300, MaxRequests: 5},
			SubmissionRateLimit: config.RateLimitConfig{WindowSeconds: 900, MaxRequests: 2},
		},
		Submission: config.SubmissionConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()
	container := provider.NewContainerWithRepository(cfg, repository.NewMemoryArticleRepository())
	return SetupRouter(cfg, container)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env apiEnvelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response failed: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func decodeData(t *testing.T, env apiEnvelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data failed: %v (%s)", err, string(env.Data))
	}
}

func TestArticleLifecycleScenario(t *testing.T) {
	r := newTestServer(t, newTestConfig())

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"password": "admin-pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("login want 200 got %d (%s)", w.Code, env.Msg)
	}
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	token := login.Token

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/admin/articles", token, map[string]interface{}{
		"title":  "Hello World",
		"body":   strings.Repeat("word ", 300),
		"status": "draft",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create want 201 got %d (%s)", w.Code, env.Msg)
	}
	var created apiArticle
	decodeData(t, env, &created)
	if created.Slug != "hello-world" || created.ReadTime != 2 || created.Views != 0 || created.PublishedAt != nil {
		t.Fatalf("unexpected created article: %+v", created)
	}
	if created.Author.Name != "AIMA" {
		t.Fatalf("default author want AIMA got %s", created.Author.Name)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/public/articles/hello-world", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft public read want 404 got %d", w.Code)
	}

	w, env = doJSON(t, r, http.MethodPut, "/api/v1/admin/articles/"+created.ID, token, map[string]string{"status": "published"})
	if w.Code != http.StatusOK {
		t.Fatalf("publish want 200 got %d (%s)", w.Code, env.Msg)
	}
	var published apiArticle
	decodeData(t, env, &published)
	if published.PublishedAt == nil || published.UpdatedAt == created.UpdatedAt {
		t.Fatalf("publish should set publishedAt and bump updatedAt: %+v", published)
	}
	if published.Title != created.Title || published.Content != created.Content {
		t.Fatalf("publish should not change title or content")
	}

	for i := 0; i < 2; i++ {
		if w, _ := doJSON(t, r, http.MethodGet, "/api/v1/public/articles/hello-world", "", nil); w.Code != http.StatusOK {
			t.Fatalf("public read want 200 got %d", w.Code)
		}
	}
	_, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/articles/"+created.ID, token, nil)
	var stored apiArticle
	decodeData(t, env, &stored)
	if stored.Views != 2 {
		t.Fatalf("views want 2 got %d", stored.Views)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/admin/articles", token, map[string]interface{}{
		"title":   "Hello World",
		"content": "second body",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("second create want 201 got %d", w.Code)
	}
	var second apiArticle
	decodeData(t, env, &second)
	if second.Slug != "hello-world-2" {
		t.Fatalf("second slug want hello-world-2 got %s", second.Slug)
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/admin/articles/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete want 200 got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/admin/articles/"+created.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete want 404 got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/public/articles/hello-world", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted article want 404 got %d", w.Code)
	}
}

func TestConcurrentPublicReadsCountEveryView(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/articles", "static-admin-token", map[string]interface{}{
		"title": "Busy", "content": "text", "status": "published",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create want 201 got %d", w.Code)
	}
	var created apiArticle
	decodeData(t, env, &created)

	const readers = 30
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/public/articles/busy", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("read want 200 got %d", rec.Code)
			}
		}()
	}
	wg.Wait()

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/articles/"+created.ID, "static-admin-token", nil)
	var stored apiArticle
	decodeData(t, env, &stored)
	if stored.Views != readers {
		t.Fatalf("views want %d got %d", readers, stored.Views)
	}
}

func TestPublicListingEndpoints(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	token := "static-admin-token"
	articles := []map[string]interface{}{
		{"title": "GPT Marketing", "content": "a", "status": "published", "category": "AI", "tags": []string{"gpt", "marketing"}},
		{"title": "GPT Support", "content": "b", "status": "published", "category": "Support", "tags": []string{"gpt"}},
		{"title": "AI Strategy", "content": "c", "status": "published", "category": "AI", "tags": []string{"strategy"}, "featured": true},
		{"title": "Secret Draft", "content": "d", "category": "Hidden", "tags": []string{"draft-only"}},
	}
	for _, body := range articles {
		if w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/articles", token, body); w.Code != http.StatusCreated {
			t.Fatalf("create want 201 got %d (%s)", w.Code, env.Msg)
		}
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/public/articles?category=all&limit=2", "", nil)
	if w.Code != http.StatusOK || env.Pagination == nil {
		t.Fatalf("list want 200 with pagination got %d", w.Code)
	}
	var page []apiArticle
	decodeData(t, env, &page)
	if len(page) != 2 || env.Pagination.Total != 3 || env.Pagination.TotalPages != 2 || !env.Pagination.HasNext || env.Pagination.HasPrev {
		t.Fatalf("unexpected first page: %d items %+v", len(page), env.Pagination)
	}
	if page[0].Title != "AI Strategy" {
		t.Fatalf("newest article should come first, got %s", page[0].Title)
	}

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/public/articles?featured=true", "", nil)
	var featured []apiArticle
	decodeData(t, env, &featured)
	if len(featured) != 1 || featured[0].Title != "AI Strategy" {
		t.Fatalf("featured filter failed: %+v", featured)
	}

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/public/categories", "", nil)
	var categories []string
	decodeData(t, env, &categories)
	if strings.Join(categories, ",") != "AI,Support" {
		t.Fatalf("categories want AI,Support got %v", categories)
	}

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/public/tags", "", nil)
	var tags []string
	decodeData(t, env, &tags)
	if strings.Join(tags, ",") != "gpt,marketing,strategy" {
		t.Fatalf("tags want gpt,marketing,strategy got %v", tags)
	}

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/public/search?q=gpt", "", nil)
	var results []map[string]interface{}
	decodeData(t, env, &results)
	if len(results) != 2 {
		t.Fatalf("search want 2 results got %d", len(results))
	}
	if _, hasContent := results[0]["content"]; hasContent {
		t.Fatalf("search results should not carry content")
	}

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/public/articles/gpt-marketing/related", "", nil)
	var related []apiArticle
	decodeData(t, env, &related)
	if len(related) != 2 || related[0].Title != "AI Strategy" || related[1].Title != "GPT Support" {
		t.Fatalf("unexpected related: %+v", related)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/metadata", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metadata want 200 got %d", w.Code)
	}
	var meta struct {
		TotalArticles     int64    `json:"totalArticles"`
		PublishedArticles int64    `json:"publishedArticles"`
		DraftArticles     int64    `json:"draftArticles"`
		Categories        []string `json:"categories"`
	}
	decodeData(t, env, &meta)
	if meta.TotalArticles != 4 || meta.PublishedArticles != 3 || meta.DraftArticles != 1 || len(meta.Categories) != 3 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/admin/articles"},
		{http.MethodPost, "/api/v1/admin/articles"},
		{http.MethodGet, "/api/v1/admin/articles/x"},
		{http.MethodPut, "/api/v1/admin/articles/x"},
		{http.MethodDelete, "/api/v1/admin/articles/x"},
		{http.MethodGet, "/api/v1/admin/metadata"},
	}
	for _, route := range routes {
		if w, _ := doJSON(t, r, route.method, route.path, "", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s want 401 got %d", route.method, route.path, w.Code)
		}
		if w, _ := doJSON(t, r, route.method, route.path, "wrong", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s with bad token want 401 got %d", route.method, route.path, w.Code)
		}
	}
	if w, _ := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"password": "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login want 401 got %d", w.Code)
	}
}

func TestAdminInputValidation(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	token := "static-admin-token"

	cases := []struct {
		name string
		body interface{}
	}{
		{name: "missing title", body: map[string]string{"content": "x"}},
		{name: "missing content", body: map[string]string{"title": "x"}},
		{name: "unknown field", body: map[string]string{"title": "x", "content": "y", "views": "100"}},
		{name: "bad status", body: map[string]string{"title": "x", "content": "y", "status": "archived"}},
		{name: "malformed json", body: `{"title":`},
		{name: "empty body", body: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/articles", token, tc.body); w.Code != http.StatusBadRequest {
				t.Fatalf("want 400 got %d (%s)", w.Code, env.Msg)
			}
		})
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/articles", token, map[string]interface{}{
		"title": "Tagged", "content": "body", "category": "AI", "author": map[string]string{"name": "Hanako", "avatar": "/a.png"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create want 201 got %d", w.Code)
	}
	var created apiArticle
	decodeData(t, env, &created)
	if created.Author.Name != "Hanako" {
		t.Fatalf("author object should be accepted, got %+v", created.Author)
	}

	_, env = doJSON(t, r, http.MethodPut, "/api/v1/admin/articles/"+created.ID, token, map[string]interface{}{"tags": []string{"new"}})
	var updated apiArticle
	decodeData(t, env, &updated)
	if updated.Title != "Tagged" || updated.Content != "body" || updated.Category != "AI" || len(updated.Tags) != 1 {
		t.Fatalf("tags-only update changed other fields: %+v", updated)
	}

	if w, _ := doJSON(t, r, http.MethodPut, "/api/v1/admin/articles/"+created.ID, token, map[string]string{"slug": "renamed"}); w.Code != http.StatusBadRequest {
		t.Fatalf("slug change want 400 got %d", w.Code)
	}
	if w, _ := doJSON(t, r, http.MethodPut, "/api/v1/admin/articles/missing", token, map[string]string{"title": "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("update missing want 404 got %d", w.Code)
	}
}

func TestSubmissionRateLimitAndDraftStatus(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	body := map[string]interface{}{"title": "Guest Post", "content": "hello", "status": "published", "featured": true}

	for i := 0; i < 2; i++ {
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/public/submissions", "", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("submission %d want 201 got %d (%s)", i+1, w.Code, env.Msg)
		}
		var created struct {
			Status string `json:"status"`
		}
		decodeData(t, env, &created)
		if created.Status != "draft" {
			t.Fatalf("submission should be stored as draft, got %s", created.Status)
		}
	}
	if w, _ := doJSON(t, r, http.MethodPost, "/api/v1/public/submissions", "", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third submission want 429 got %d", w.Code)
	}
	if w, _ := doJSON(t, r, http.MethodGet, "/api/v1/public/articles/guest-post", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("submitted draft should not be public, got %d", w.Code)
	}
}

func TestSubmissionDisabled(t *testing.T) {
	cfg := newTestConfig()
	cfg.Submission.Enabled = false
	r := newTestServer(t, cfg)
	if w, _ := doJSON(t, r, http.MethodPost, "/api/v1/public/submissions", "", map[string]string{"title": "x", "content": "y"}); w.Code != http.StatusNotFound {
		t.Fatalf("disabled submission want 404 got %d", w.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	for i := 0; i < 5; i++ {
		if w, _ := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"password": "nope"}); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d want 401 got %d", i+1, w.Code)
		}
	}
	if w, _ := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"password": "admin-pass"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth attempt want 429 got %d", w.Code)
	}
}

func TestHealthzAndNoRoute(t *testing.T) {
	r := newTestServer(t, newTestConfig())
	if w, _ := doJSON(t, r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz want 200 got %d", w.Code)
	}
	if w, _ := doJSON(t, r, http.MethodGet, "/api/v1/public/unknown", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route want 404 got %d", w.Code)
	}
}
