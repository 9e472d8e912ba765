package handler

import (
	"net/http"

	"github.com/exguesich/tagebuch-app/internal/service"
)

// AddCategoryForm handles GET /add_category.
func (h *Handler) AddCategoryForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Kategorie hinzufügen",
	}
	if r.URL.Query().Get("error") == "missing" {
		data["Error"] = userMessage(service.ErrMissingFields)
	}
	h.render(w, http.StatusOK, "add_category", data)
}

// AddCategory handles POST /add_category. Both outcomes redirect with a
// flash-style notice: success back to the entry form, a validation
// failure back to this form.
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/add_category?error=missing", http.StatusSeeOther)
		return
	}

	input := service.CreateCategoryInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}

	if _, err := h.catSvc.Create(r.Context(), input); err != nil {
		if !service.IsValidation(err) {
			h.logInternal(r, "add_category", err)
		}
		http.Redirect(w, r, "/add_category?error=missing", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/create_entry?category_added=1", http.StatusSeeOther)
}
