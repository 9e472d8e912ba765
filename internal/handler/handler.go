// Package handler maps HTTP requests onto the service layer and renders
// the server-side HTML surface.
package handler

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/exguesich/tagebuch-app/internal/repository"
	"github.com/exguesich/tagebuch-app/internal/service"
	"github.com/exguesich/tagebuch-app/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxMultipartMemory caps the in-memory portion of multipart parsing;
// larger file parts spill to disk. The actual upload size limit is
// enforced by the storage layer.
const maxMultipartMemory = 8 << 20

// Handler wraps application dependencies for HTTP handlers.
type Handler struct {
	authSvc   *service.AuthService
	entrySvc  *service.EntryService
	catSvc    *service.CategoryService
	sessions  *session.Manager
	repo      *repository.Repository
	uploadDir string
	logger    *slog.Logger
	tpls      *template.Template
}

// New creates a Handler with all dependencies wired.
func New(
	authSvc *service.AuthService,
	entrySvc *service.EntryService,
	catSvc *service.CategoryService,
	sessions *session.Manager,
	repo *repository.Repository,
	uploadDir string,
	logger *slog.Logger,
) *Handler {
	funcs := template.FuncMap{
		// deref unwraps the nullable category FK for comparisons.
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
	}
	tpls := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &Handler{
		authSvc:   authSvc,
		entrySvc:  entrySvc,
		catSvc:    catSvc,
		sessions:  sessions,
		repo:      repo,
		uploadDir: uploadDir,
		logger:    logger,
		tpls:      tpls,
	}
}

// Routes assembles the application router. Cross-cutting middleware
// (request ID, logging, recovery, metrics) is layered on by the caller.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Uploaded images, served read-only.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploadDir))))

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireAuth)
		r.Get("/choose_action", h.ChooseAction)
		r.Get("/view_entries", h.ViewEntries)
		r.Get("/create_entry", h.CreateEntryForm)
		r.Post("/create_entry", h.CreateEntry)
		r.Get("/edit_entry/{id}", h.EditEntryForm)
		r.Post("/edit_entry/{id}", h.EditEntry)
		r.Post("/delete_entry/{id}", h.DeleteEntry)
		r.Get("/add_category", h.AddCategoryForm)
		r.Post("/add_category", h.AddCategory)
	})

	r.NotFound(h.NotFound)
	return r
}

// Index redirects to the login page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "notfound", map[string]any{
		"Title": "Nicht gefunden",
	})
}

// Healthz reports database connectivity.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// render executes a named template. Template failures at this point can
// only be programming errors; they are logged and surfaced as a 500.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tpls.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

// userMessage maps the closed error taxonomy onto user-facing text.
// Internal error detail never reaches the browser.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return "Bitte fülle alle Pflichtfelder aus!"
	case errors.Is(err, service.ErrInvalidDate):
		return "Ungültiges Datumsformat!"
	case errors.Is(err, service.ErrUsernameTaken):
		return "Dieser Benutzername ist bereits vergeben!"
	case errors.Is(err, service.ErrEmailTaken):
		return "Diese E-Mail-Adresse ist bereits registriert!"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Falsche Anmeldedaten!"
	case errors.Is(err, service.ErrCategoryNotFound):
		return "Unbekannte Kategorie!"
	case errors.Is(err, service.ErrImageTooLarge):
		return "Das Bild ist zu groß!"
	case errors.Is(err, service.ErrBadImage):
		return "Die Bilddatei konnte nicht verarbeitet werden!"
	default:
		return "Es ist ein interner Fehler aufgetreten. Bitte versuche es erneut."
	}
}

// logInternal records non-taxonomy errors with the request ID. The
// caller is responsible for showing only the generic message.
func (h *Handler) logInternal(r *http.Request, op string, err error) {
	h.logger.Error("internal error", "op", op, "path", r.URL.Path, "error", err)
}

// formValue returns a form field and whether it was present in the
// submission at all. Presence matters: edit operations merge over the
// stored entry, and an absent field must keep its current value.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

// parseSubmission parses a form body, multipart or urlencoded.
func parseSubmission(r *http.Request) error {
	err := r.ParseMultipartForm(maxMultipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}
