// ABOUTME: Tests for form validation rules
// ABOUTME: Table-driven checks of each form's field rules and messages

package validation

import (
	"errors"
	"strings"
	"testing"
)

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()
	if err == nil {
		return nil
	}
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T: %v", err, err)
	}
	return errs
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name  string
		form  SignIn
		field string
		want  string
	}{
		{"valid", SignIn{Email: "ana@example.com", Password: "x"}, "", ""},
		{"missing email", SignIn{Password: "x"}, "email", "email is required"},
		{"bad email", SignIn{Email: "ana@", Password: "x"}, "email", "email must be a valid email"},
		{"missing password", SignIn{Email: "ana@example.com"}, "password", "password is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := fieldErrors(t, Struct(&tc.form))
			if tc.field == "" {
				if errs != nil {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if got := errs.Field(tc.field); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSignIn_TrimsEmailNotPassword(t *testing.T) {
	form := SignIn{Email: "  ana@example.com ", Password: " secret "}
	if err := Struct(&form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Email != "ana@example.com" {
		t.Errorf("expected trimmed email, got %q", form.Email)
	}
	if form.Password != " secret " {
		t.Errorf("expected password untouched, got %q", form.Password)
	}
}

func TestSignUp(t *testing.T) {
	valid := SignUp{Name: "Ana", Email: "ana@example.com", Password: "Passw0rd!", ConfirmPassword: "Passw0rd!"}

	tests := []struct {
		name   string
		mutate func(*SignUp)
		field  string
		want   string
	}{
		{"valid", func(*SignUp) {}, "", ""},
		{"short name", func(f *SignUp) { f.Name = "Al" }, "name", "name must be at least 3 characters"},
		{"long name", func(f *SignUp) { f.Name = strings.Repeat("a", 21) }, "name", "name must be at most 20 characters"},
		{"short password", func(f *SignUp) { f.Password, f.ConfirmPassword = "Pa0!", "Pa0!" }, "password", "password must be at least 8 characters"},
		{"no upper", func(f *SignUp) { f.Password, f.ConfirmPassword = "passw0rd!", "passw0rd!" }, "password", ""},
		{"no symbol", func(f *SignUp) { f.Password, f.ConfirmPassword = "Passw0rdx", "Passw0rdx" }, "password", ""},
		{"disallowed char", func(f *SignUp) { f.Password, f.ConfirmPassword = "Passw0rd!#", "Passw0rd!#" }, "password", ""},
		{"mismatch", func(f *SignUp) { f.ConfirmPassword = "Passw0rd?" }, "confirmation", "confirmation does not match"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := valid
			tc.mutate(&form)
			errs := fieldErrors(t, Struct(&form))
			if tc.field == "" {
				if errs != nil {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			got := errs.Field(tc.field)
			if got == "" {
				t.Fatalf("expected error on %s, got %v", tc.field, errs)
			}
			if tc.want != "" && got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNews(t *testing.T) {
	valid := News{Title: "Banjir melanda kota", Body: "Isi berita yang cukup panjang", CategoryID: 2}
	if err := Struct(&valid); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	short := News{Title: "Pendek", Body: "singkat", CategoryID: 0}
	errs := fieldErrors(t, Struct(&short))
	if errs.Field("title") != "title must be at least 10 characters" {
		t.Errorf("unexpected title error: %q", errs.Field("title"))
	}
	if errs.Field("content") != "content must be at least 10 characters" {
		t.Errorf("unexpected content error: %q", errs.Field("content"))
	}
	if errs.Field("category") != "category is required" {
		t.Errorf("unexpected category error: %q", errs.Field("category"))
	}

	badImage := valid
	badImage.Image = "not a url"
	if errs := fieldErrors(t, Struct(&badImage)); errs.Field("image") == "" {
		t.Error("expected image url error")
	}
}

func TestNews_TitleCountsAfterTrim(t *testing.T) {
	form := News{Title: "   pendek    ", Body: "Isi berita yang cukup panjang", CategoryID: 1}
	errs := fieldErrors(t, Struct(&form))
	if errs.Field("title") == "" {
		t.Error("expected padded short title to fail")
	}
}

func TestMotivation(t *testing.T) {
	if err := Struct(&Motivation{Text: "Ayo"}); err != nil {
		t.Errorf("expected 3 chars to pass, got %v", err)
	}
	if err := Struct(&Motivation{Text: "Ay"}); err == nil {
		t.Error("expected 2 chars to fail")
	}
	if err := Struct(&Motivation{Text: strings.Repeat("x", 201)}); err == nil {
		t.Error("expected 201 chars to fail")
	}
	if err := Struct(&MotivationUpdate{Text: "Ayo semangat"}); err != nil {
		t.Errorf("expected update text to pass, got %v", err)
	}
	if err := Struct(&MotivationUpdate{Text: "Ayo"}); err == nil {
		t.Error("expected short update text to fail")
	}
}

func TestVarAndRule(t *testing.T) {
	rule := Rule(&News{}, "title")
	if rule != "required,min=10,max=100" {
		t.Fatalf("unexpected rule: %q", rule)
	}
	if err := Var("title", "Pendek", rule); err == nil || err.Error() != "title must be at least 10 characters" {
		t.Errorf("unexpected Var error: %v", err)
	}
	if err := Var("title", "Cukup panjang sekali", rule); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
	if Rule(News{}, "missing") != "" {
		t.Error("expected empty rule for unknown field")
	}
}

func TestErrorsString(t *testing.T) {
	errs := Errors{"title": "title is required", "content": "content is required"}
	if got := errs.Error(); got != "content is required; title is required" {
		t.Errorf("expected sorted join, got %q", got)
	}
}
