package handler

import (
	"net/http"

	"github.com/exguesich/tagebuch-app/internal/service"
)

// RegisterForm handles GET /register.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register", map[string]any{
		"Title": "Registrieren",
	})
}

// Register handles POST /register. Validation failures re-render the
// form with a message; success redirects to the login page.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusOK, "register", map[string]any{
			"Title": "Registrieren",
			"Error": userMessage(service.ErrMissingFields),
		})
		return
	}

	input := service.RegisterInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		if !service.IsValidation(err) {
			h.logInternal(r, "register", err)
		}
		h.render(w, http.StatusOK, "register", map[string]any{
			"Title":    "Registrieren",
			"Error":    userMessage(err),
			"Username": input.Username,
			"Email":    input.Email,
		})
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// LoginForm handles GET /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", map[string]any{
		"Title":      "Anmelden",
		"Registered": r.URL.Query().Get("registered") == "1",
	})
}

// Login handles POST /login. Unknown email and wrong password render
// the identical page, so accounts cannot be enumerated. Credentials are
// never logged.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusOK, "login", map[string]any{
			"Title": "Anmelden",
			"Error": userMessage(service.ErrInvalidCredentials),
		})
		return
	}

	user, err := h.authSvc.Login(r.Context(), service.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if !service.IsValidation(err) {
			h.logInternal(r, "login", err)
		}
		h.render(w, http.StatusOK, "login", map[string]any{
			"Title": "Anmelden",
			"Error": userMessage(service.ErrInvalidCredentials),
		})
		return
	}

	if err := h.sessions.Start(r.Context(), w, user.ID); err != nil {
		h.logInternal(r, "login", err)
		h.render(w, http.StatusOK, "login", map[string]any{
			"Title": "Anmelden",
			"Error": userMessage(err),
		})
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/choose_action", http.StatusSeeOther)
}

// Logout handles GET /logout. Clearing is unconditional and idempotent.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(r.Context(), w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
