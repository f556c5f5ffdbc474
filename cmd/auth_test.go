package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/kabar-app/kabar/internal/client"
)

func TestLogin_PersistsSession(t *testing.T) {
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "rina@example.com" || body["password"] != "Secret123!" {
			t.Errorf("unexpected credentials %v", body)
		}
		writeBody(w, http.StatusOK, client.LoginResponse{User: *testReader, Token: "fresh-token"})
	}), nil)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), svc, &buf, " rina@example.com ", "Secret123!"); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Signed in as Rina") {
		t.Errorf("unexpected output %q", buf.String())
	}

	// A later command restores the session from disk
	next := newServices(svc.cfg, svc.logger)
	var out bytes.Buffer
	if code := runWhoami(context.Background(), next, &out); code != exitOK {
		t.Fatalf("expected whoami to succeed, got %d: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "rina@example.com") {
		t.Errorf("expected email in whoami output, got %q", out.String())
	}
}

func TestLogin_InvalidInputSkipsBackend(t *testing.T) {
	svc := newTestServices(t, unreachable(t), nil)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), svc, &buf, "not-an-email", ""); code != exitValidation {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestLogin_RejectedCredentials(t *testing.T) {
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	}), nil)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), svc, &buf, "rina@example.com", "wrong"); code != exitError {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(buf.String(), "Invalid email or password") {
		t.Errorf("expected backend message, got %q", buf.String())
	}
}

func TestPasswordOrEnv(t *testing.T) {
	t.Setenv(passwordEnv, "FromEnv1!")

	if got := passwordOrEnv("FromFlag1!"); got != "FromFlag1!" {
		t.Errorf("expected flag to win, got %q", got)
	}
	if got := passwordOrEnv(""); got != "FromEnv1!" {
		t.Errorf("expected env fallback, got %q", got)
	}
}

func TestRegister(t *testing.T) {
	var got client.RegisterInput
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeBody(w, http.StatusCreated, map[string]string{"message": "ok"})
	}), nil)

	var buf bytes.Buffer
	if code := runRegister(context.Background(), svc, &buf, "Rina", "rina@example.com", "Secret123!"); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if got.Name != "Rina" || got.Email != "rina@example.com" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newTestServices(t, unreachable(t), nil)

	var buf bytes.Buffer
	if code := runRegister(context.Background(), svc, &buf, "Rina", "rina@example.com", "password"); code != exitValidation {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestLogout(t *testing.T) {
	svc := newTestServices(t, unreachable(t), testReader)

	var buf bytes.Buffer
	if code := runLogout(context.Background(), svc, &buf); code != exitOK {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(buf.String(), "Signed out") {
		t.Errorf("unexpected output %q", buf.String())
	}

	var out bytes.Buffer
	if code := runWhoami(context.Background(), newServices(svc.cfg, svc.logger), &out); code != exitError {
		t.Errorf("expected whoami to fail after logout, got %d", code)
	}
}

func TestWhoami_JSON(t *testing.T) {
	svc := newTestServices(t, unreachable(t), testAdmin)
	jsonOutput = true
	defer func() { jsonOutput = false }()

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), svc, &buf); code != exitOK {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	var u client.User
	if err := json.Unmarshal(buf.Bytes(), &u); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !u.IsAdmin() {
		t.Errorf("expected admin user, got %+v", u)
	}
}
