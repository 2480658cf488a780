package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watch-catalog/internal/oauth"
	"watch-catalog/internal/repository/repotest"
	"watch-catalog/internal/service"
)

const testFrontendURL = "http://front.test"

type fakeProvider struct {
	profile  oauth.Profile
	err      error
	lastCode string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/o/oauth2/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (oauth.Profile, error) {
	p.lastCode = code
	return p.profile, p.err
}

type testEnv struct {
	router   *gin.Engine
	members  *repotest.MemberStore
	brands   *repotest.BrandStore
	watches  *repotest.WatchStore
	provider *fakeProvider
	state    *oauth.StateSigner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	members := repotest.NewMemberStore()
	brands := repotest.NewBrandStore()
	watches := repotest.NewWatchStore(brands, members)
	hasher := service.NewCredentialHasher("app-secret")
	provider := &fakeProvider{}
	state := oauth.NewStateSigner("session-secret", 10*time.Minute)

	authH := NewAuthHandler(logger,
		service.NewAuthService(logger, members, hasher, nil),
		service.NewFederatedService(logger, members, hasher),
		provider,
		state,
		AuthHandlerConfig{CookieDomain: "localhost", FrontendURL: testFrontendURL},
	)
	brandH := NewBrandHandler(logger, service.NewBrandService(logger, brands, watches, service.NewMemoryCatalogCache(), time.Minute))
	watchH := NewWatchHandler(logger, service.NewWatchService(logger, watches, brands))
	memberH := NewMemberHandler(logger, service.NewMemberService(logger, members))

	router := NewRouter(logger, RouterConfig{
		AllowedOrigins: []string{"http://front.test"},
		SessionSecret:  "session-secret",
	}, members, authH, brandH, watchH, memberH)

	return &testEnv{
		router:   router,
		members:  members,
		brands:   brands,
		watches:  watches,
		provider: provider,
		state:    state,
	}
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(token string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token}) }
}

func withCookies(cookies ...*http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func performRequest(r http.Handler, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

// signUp registra y loguea un miembro; devuelve su id y token de sesión.
func (e *testEnv) signUp(t *testing.T, name, email, password string) (string, string) {
	t.Helper()
	rec := performRequest(e.router, http.MethodPost, "/auth/register", map[string]string{
		"membername": name, "email": email, "password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d %s", email, rec.Code, rec.Body.String())
	}
	rec = performRequest(e.router, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %s", email, rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	auth, _ := body["authentication"].(map[string]any)
	token, _ := auth["sessionToken"].(string)
	if token == "" {
		t.Fatalf("login %s: missing session token", email)
	}
	return body["_id"].(string), token
}

func (e *testEnv) promote(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	m, err := e.members.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	m.IsAdmin = true
	if _, err := e.members.UpdateProfile(ctx, m); err != nil {
		t.Fatalf("promote: %v", err)
	}
}
