// ABOUTME: Tests for the kabar API client
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token() (string, error) { return "", errors.New("disk unreadable") }

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("expected path /auth/login, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send an Authorization header")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ana@example.com" || body["password"] != "Passw0rd!" {
			t.Errorf("unexpected credentials payload: %v", body)
		}
		json.NewEncoder(w).Encode(LoginResponse{
			User:  User{ID: 7, Name: "Ana", Email: "ana@example.com", Role: "USER"},
			Token: "tok-123",
		})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(staticToken("stale")))
	resp, err := c.Login(context.Background(), "ana@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "tok-123" {
		t.Errorf("expected token tok-123, got %s", resp.Token)
	}
	if resp.User.ID != 7 {
		t.Errorf("expected user id 7, got %d", resp.User.ID)
	}
}

func TestLogin_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"id": 1}})
	}))
	defer server.Close()

	_, err := New(server.URL).Login(context.Background(), "a@b.co", "x")
	if err == nil {
		t.Fatal("expected error for response without token")
	}
}

func TestLogin_RejectedDoesNotTriggerUnauthorizedHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Email atau password salah"})
	}))
	defer server.Close()

	called := false
	c := New(server.URL, WithUnauthorizedHandler(func() { called = true }))
	_, err := c.Login(context.Background(), "a@b.co", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if called {
		t.Error("unauthorized handler must only fire for authenticated calls")
	}
	if Message(err) != "Email atau password salah" {
		t.Errorf("expected server message, got %q", Message(err))
	}
}

func TestAuthenticatedCall_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id header")
		}
		json.NewEncoder(w).Encode([]NewsItem{{ID: 1, Title: "Judul"}})
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(staticToken("tok-123")))
	items, err := c.ListNews(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Judul" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestAuthenticatedCall_NoTokenSendsNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(staticToken("")))
	if _, err := c.ListMotivations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthenticatedCall_TokenSourceError(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := New(server.URL, WithTokenSource(failingToken{}))
	if _, err := c.ListNews(context.Background()); err == nil {
		t.Fatal("expected error when token source fails")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("expected no request to be sent")
	}
}

func TestListNews_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"data envelope", `{"data":[{"id":1}]}`, 1},
		{"results envelope", `{"results":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"empty body", ``, 0},
		{"null", `null`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			items, err := New(server.URL).ListNews(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != tc.want {
				t.Errorf("expected %d items, got %d", tc.want, len(items))
			}
			if items == nil {
				t.Error("expected non-nil slice")
			}
		})
	}
}

func TestListNews_UnexpectedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news":"nope"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).ListNews(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSearchNews_QueryParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" {
			t.Errorf("expected path /news, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "banjir jakarta" {
			t.Errorf("expected search query, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	if _, err := New(server.URL).SearchNews(context.Background(), "banjir jakarta"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetNews_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news/42" {
			t.Errorf("expected path /news/42, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL).GetNews(context.Background(), 42)
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestGetCategory_WithNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news-category/3" {
			t.Errorf("expected path /news-category/3, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("withNews") != "true" {
			t.Error("expected withNews=true")
		}
		w.Write([]byte(`{"id":3,"namaKategori":"Olahraga","news":[{"id":9,"judul":"Skor akhir"}]}`))
	}))
	defer server.Close()

	cat, err := New(server.URL).GetCategory(context.Background(), 3, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Name != "Olahraga" {
		t.Errorf("expected category name Olahraga, got %s", cat.Name)
	}
	if len(cat.News) != 1 || cat.News[0].ID != 9 {
		t.Errorf("unexpected news: %+v", cat.News)
	}
}

func TestMutations_MethodsAndPaths(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"id":5}`))
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()
	c.CreateNews(ctx, NewsInput{Title: "t"})
	c.UpdateNews(ctx, 5, NewsInput{Title: "t"})
	c.DeleteNews(ctx, 5)
	c.CreateMotivation(ctx, MotivationInput{Text: "m"})
	c.UpdateMotivation(ctx, 6, MotivationInput{Text: "m"})
	c.DeleteMotivation(ctx, 6)

	want := []call{
		{http.MethodPost, "/news"},
		{http.MethodPatch, "/news/5"},
		{http.MethodDelete, "/news/5"},
		{http.MethodPost, "/motivations"},
		{http.MethodPatch, "/motivations/6"},
		{http.MethodDelete, "/motivations/6"},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: expected %v, got %v", i, want[i], calls[i])
		}
	}
}

func TestUnauthorizedHandler_FiresOn401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var fired int32
	c := New(server.URL,
		WithTokenSource(staticToken("expired")),
		WithUnauthorizedHandler(func() { atomic.AddInt32(&fired, 1) }),
	)
	_, err := c.ListNews(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if atomic.LoadInt32(&fired) != 1 {
		t.Errorf("expected handler to fire once, fired %d", fired)
	}
}

func TestRegister_ValidationMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"issues":[{"message":"Email sudah terdaftar"}]}}`))
	}))
	defer server.Close()

	err := New(server.URL).Register(context.Background(), RegisterInput{Name: "Ana"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindRejected {
		t.Fatalf("expected rejected error, got %v", err)
	}
	if Message(err) != "Email sudah terdaftar" {
		t.Errorf("expected issue message, got %q", Message(err))
	}
}

func TestConnectionError(t *testing.T) {
	c := New("http://localhost:99999")
	_, err := c.ListNews(context.Background())
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL).ListNews(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := New(server.URL, WithTimeout(20*time.Millisecond)).ListNews(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if Message(err) != "The server took too long to respond" {
		t.Errorf("expected timeout message, got %q", Message(err))
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"Judul wajib diisi"}`, "Judul wajib diisi"},
		{"issues", `{"error":{"issues":[{"message":"Password lemah"}]}}`, "Password lemah"},
		{"error string", `{"error":"forbidden"}`, "forbidden"},
		{"details", `{"details":"try later"}`, "try later"},
		{"unrecognized", `{"status":"bad"}`, ""},
		{"not json", `<html>oops</html>`, ""},
		{"blank message falls through", `{"message":"  ","error":"real"}`, "real"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractMessage([]byte(tc.body)); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMessage_Fallbacks(t *testing.T) {
	if got := Message(errors.New("boom")); got != GenericMessage {
		t.Errorf("expected generic message for foreign error, got %q", got)
	}
	if got := Message(&APIError{Kind: KindServer, StatusCode: 500}); got != GenericMessage {
		t.Errorf("expected generic message for bare 500, got %q", got)
	}
	if got := Message(nil); got != "" {
		t.Errorf("expected empty message for nil, got %q", got)
	}
}

func TestUserPermissions(t *testing.T) {
	admin := &User{ID: 1, Role: RoleAdmin}
	writer := &User{ID: 2, Role: "USER"}
	var nobody *User

	if !admin.CanModify(99) {
		t.Error("admin should modify anything")
	}
	if !writer.CanModify(2) {
		t.Error("owner should modify own content")
	}
	if writer.CanModify(3) {
		t.Error("non-owner should not modify")
	}
	if nobody.CanModify(0) || nobody.IsAdmin() {
		t.Error("nil user has no permissions")
	}
}
