package handler

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/exguesich/tagebuch-app/internal/model"
	"github.com/exguesich/tagebuch-app/internal/repository"
	"github.com/exguesich/tagebuch-app/internal/service"
	"github.com/exguesich/tagebuch-app/internal/session"
	"github.com/exguesich/tagebuch-app/internal/storage"
	"github.com/exguesich/tagebuch-app/internal/testutil"
)

type fixture struct {
	handler  http.Handler
	repo     *repository.Repository
	sessions *session.Manager
	authSvc  *service.AuthService
	category *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewWithDB(testutil.OpenDB(t))
	uploads, err := storage.New(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	sessions := session.NewManager(session.NewDBStore(repo), time.Hour)
	authSvc := service.NewAuthService(repo)
	entrySvc := service.NewEntryService(repo, uploads)
	catSvc := service.NewCategoryService(repo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	category := &model.Category{Name: "Gedanken", Description: "Allgemeine Gedanken"}
	if err := repo.CreateCategory(context.Background(), category); err != nil {
		t.Fatal(err)
	}

	h := New(authSvc, entrySvc, catSvc, sessions, repo, uploads.Dir(), logger)
	return &fixture{
		handler:  h.Routes(),
		repo:     repo,
		sessions: sessions,
		authSvc:  authSvc,
		category: category,
	}
}

// signUp registers a user and returns their session cookie.
func (f *fixture) signUp(t *testing.T, username, email string) (*model.User, *http.Cookie) {
	t.Helper()

	user, err := f.authSvc.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    email,
		Password: "geheim",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}

	rec := httptest.NewRecorder()
	if err := f.sessions.Start(context.Background(), rec, user.ID); err != nil {
		t.Fatal(err)
	}
	return user, rec.Result().Cookies()[0]
}

func (f *fixture) do(t *testing.T, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndex_RedirectsToLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestProtectedRoutes_RequireLogin(t *testing.T) {
	f := newFixture(t)

	paths := []string{"/choose_action", "/view_entries", "/create_entry", "/add_category", "/edit_entry/1"}
	for _, path := range paths {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, path, nil), nil)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("%s: expected guest redirect to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, postForm("/register", url.Values{
		"username": {"mina"},
		"email":    {"mina@example.com"},
		"password": {"sehr-geheim"},
	}), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?registered=1" {
		t.Fatalf("expected redirect to login after registration, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = f.do(t, postForm("/login", url.Values{
		"email":    {"mina@example.com"},
		"password": {"sehr-geheim"},
	}), nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/choose_action" {
		t.Fatalf("expected redirect to menu after login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie after login")
	}

	// The session must open protected pages.
	cookie := rec.Result().Cookies()[0]
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/view_entries", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on /view_entries with session, got %d", rec.Code)
	}
}

func TestLogin_WrongPassword_SamePage(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "mina", "mina@example.com")

	wrongPw := f.do(t, postForm("/login", url.Values{
		"email":    {"mina@example.com"},
		"password": {"falsch"},
	}), nil)
	unknown := f.do(t, postForm("/login", url.Values{
		"email":    {"niemand@example.com"},
		"password": {"geheim"},
	}), nil)

	for name, rec := range map[string]*httptest.ResponseRecorder{"wrong_password": wrongPw, "unknown_email": unknown} {
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected re-rendered login page (200), got %d", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Falsche Anmeldedaten") {
			t.Errorf("%s: expected the generic credentials message", name)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Errorf("%s: no session cookie may be issued", name)
		}
	}

	// Both failure modes must be observably identical.
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Error("wrong password and unknown email must render identical pages")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, postForm("/register", url.Values{
		"username": {"mina"},
		"email":    {"neu@example.com"},
		"password": {"pw"},
	}), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected re-rendered form, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Benutzername ist bereits vergeben") {
		t.Error("expected duplicate-username message")
	}
}

func TestCreateEntry_MissingTitle(t *testing.T) {
	f := newFixture(t)
	user, cookie := f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, postForm("/create_entry", url.Values{
		"content":  {"Inhalt"},
		"date":     {"2024-03-01"},
		"category": {strconv.FormatUint(uint64(f.category.ID), 10)},
	}), cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("validation failure must re-render with 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Bitte fülle alle Pflichtfelder aus") {
		t.Error("expected a non-empty validation message")
	}

	entries, err := f.repo.ListEntriesByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("no row may be inserted on validation failure, got %d", len(entries))
	}
}

func TestCreateEntry_InvalidCalendarDate(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, postForm("/create_entry", url.Values{
		"title":    {"Titel"},
		"content":  {"Inhalt"},
		"date":     {"2024-02-30"},
		"category": {strconv.FormatUint(uint64(f.category.ID), 10)},
	}), cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected re-rendered form, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ungültiges Datumsformat") {
		t.Error("expected the invalid-date message")
	}
}

func TestCreateEntry_Multipart_WithImage(t *testing.T) {
	f := newFixture(t)
	user, cookie := f.signUp(t, "mina", "mina@example.com")

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	for key, value := range map[string]string{
		"title":    "Mit Bild",
		"content":  "Inhalt",
		"mood":     "gut",
		"date":     "2024-03-02",
		"category": strconv.FormatUint(uint64(f.category.ID), 10),
	} {
		mw.WriteField(key, value)
	}
	part, err := mw.CreateFormFile("image", "strand.jpg")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("jpegbytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/create_entry", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := f.do(t, req, cookie)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/view_entries" {
		t.Fatalf("expected redirect to list view, got %d %q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	entries, err := f.repo.ListEntriesByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ImagePath == "" {
		t.Error("expected a stored image path")
	}

	// The stored image must be served back.
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/uploads/"+entries[0].ImagePath, nil), cookie)
	if rec.Code != http.StatusOK || rec.Body.String() != "jpegbytes" {
		t.Errorf("uploaded image not served: %d", rec.Code)
	}
}

func TestEditEntry_NonOwnerRedirectsWithoutChange(t *testing.T) {
	f := newFixture(t)
	owner, ownerCookie := f.signUp(t, "mina", "mina@example.com")
	_, strangerCookie := f.signUp(t, "rolf", "rolf@example.com")

	catID := strconv.FormatUint(uint64(f.category.ID), 10)
	rec := f.do(t, postForm("/create_entry", url.Values{
		"title":    {"Privat"},
		"content":  {"Inhalt"},
		"date":     {"2024-03-01"},
		"category": {catID},
	}), ownerCookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create failed: %d", rec.Code)
	}

	entries, err := f.repo.ListEntriesByUser(context.Background(), owner.ID)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (%v)", len(entries), err)
	}
	id := strconv.FormatUint(uint64(entries[0].ID), 10)

	rec = f.do(t, postForm("/edit_entry/"+id, url.Values{
		"title": {"Gekapert"},
	}), strangerCookie)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/view_entries" {
		t.Errorf("non-owner edit must redirect to list view, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	stored, err := f.repo.GetEntryByID(context.Background(), entries[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != "Privat" {
		t.Errorf("entry must be unchanged after non-owner edit, title is %q", stored.Title)
	}
}

func TestDeleteEntry_NonOwnerLeavesRow(t *testing.T) {
	f := newFixture(t)
	owner, ownerCookie := f.signUp(t, "mina", "mina@example.com")
	_, strangerCookie := f.signUp(t, "rolf", "rolf@example.com")

	rec := f.do(t, postForm("/create_entry", url.Values{
		"title":    {"Bleibt"},
		"content":  {"Inhalt"},
		"date":     {"2024-03-01"},
		"category": {strconv.FormatUint(uint64(f.category.ID), 10)},
	}), ownerCookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create failed: %d", rec.Code)
	}

	entries, _ := f.repo.ListEntriesByUser(context.Background(), owner.ID)
	id := strconv.FormatUint(uint64(entries[0].ID), 10)

	f.do(t, postForm("/delete_entry/"+id, nil), strangerCookie)

	if _, err := f.repo.GetEntryByID(context.Background(), entries[0].ID); err != nil {
		t.Errorf("row must survive non-owner delete: %v", err)
	}
}

func TestEditEntry_MoodOnly_PreservesFields(t *testing.T) {
	f := newFixture(t)
	owner, cookie := f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, postForm("/create_entry", url.Values{
		"title":    {"Original"},
		"content":  {"Inhalt"},
		"mood":     {"gut"},
		"date":     {"2024-03-01"},
		"category": {strconv.FormatUint(uint64(f.category.ID), 10)},
	}), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create failed: %d", rec.Code)
	}
	entries, _ := f.repo.ListEntriesByUser(context.Background(), owner.ID)
	id := strconv.FormatUint(uint64(entries[0].ID), 10)

	rec = f.do(t, postForm("/edit_entry/"+id, url.Values{
		"mood": {"nachdenklich"},
	}), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("mood-only edit should succeed, got %d", rec.Code)
	}

	stored, err := f.repo.GetEntryByID(context.Background(), entries[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Mood != "nachdenklich" {
		t.Errorf("mood not updated: %q", stored.Mood)
	}
	if stored.Title != "Original" || stored.Content != "Inhalt" || stored.DateString() != "2024-03-01" {
		t.Errorf("untouched fields must be preserved: %+v", stored)
	}
	if stored.CategoryID == nil || *stored.CategoryID != f.category.ID {
		t.Error("category must be preserved")
	}
}

func TestEditEntry_UnknownID(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/edit_entry/4242", nil), cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown entry, got %d", rec.Code)
	}

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/edit_entry/abc", nil), cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for garbage id, got %d", rec.Code)
	}
}

func TestAddCategory(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, postForm("/add_category", url.Values{
		"name":        {"Sport"},
		"description": {"Training"},
	}), cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/create_entry?category_added=1" {
		t.Fatalf("expected redirect with notice, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = f.do(t, postForm("/add_category", url.Values{
		"name": {"   "},
	}), cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/add_category?error=missing" {
		t.Fatalf("expected redirect back to form on validation error, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	cats, err := f.repo.ListCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 { // fixture category + Sport
		t.Errorf("expected 2 categories, got %d", len(cats))
	}
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.signUp(t, "mina", "mina@example.com")

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/logout", nil), cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d", rec.Code)
	}

	// Session is gone; the protected page redirects again.
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/view_entries", nil), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("session must be dead after logout, got %d", rec.Code)
	}

	// Logging out again, without any session, still works.
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/logout", nil), nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("guest logout must not fail, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
