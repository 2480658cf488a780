package http

import (
	"net/http"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "missing token", header: "Bearer", want: ""},
		{name: "extra parts", header: "Bearer abc def", want: ""},
		{name: "other scheme", header: "Basic abc", want: ""},
		{name: "lowercase scheme", header: "bearer abc", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractBearerToken(tc.header); got != tc.want {
				t.Fatalf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.signUp(t, "a", "a@x.com", "p1")
	path := "/members/" + id

	rec := performRequest(env.router, http.MethodGet, path, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without token, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodGet, path, nil, withBearer("unknown"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown token, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodGet, path, nil, withBearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodGet, path, nil, withCookie(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie, got %d", rec.Code)
	}

	// El header tiene prioridad sobre la cookie.
	rec = performRequest(env.router, http.MethodGet, path, nil, withBearer("unknown"), withCookie(token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected bearer to win over cookie, got %d", rec.Code)
	}
}

func TestRequireOwner(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "a", "a@x.com", "p1")
	otherID, _ := env.signUp(t, "b", "b@x.com", "p2")

	rec := performRequest(env.router, http.MethodGet, "/members/"+otherID, nil, withBearer(token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign member, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPatch, "/members/"+otherID, map[string]string{"membername": "x"}, withBearer(token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign patch, got %d", rec.Code)
	}
}

func TestRequireAdmin_ReadsStore(t *testing.T) {
	env := newTestEnv(t)
	id, token := env.signUp(t, "a", "a@x.com", "p1")

	rec := performRequest(env.router, http.MethodGet, "/members", nil, withBearer(token))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	env.promote(t, id)
	rec = performRequest(env.router, http.MethodGet, "/members", nil, withBearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after promotion without new login, got %d", rec.Code)
	}
}
