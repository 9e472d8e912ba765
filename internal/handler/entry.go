package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/exguesich/tagebuch-app/internal/model"
	"github.com/exguesich/tagebuch-app/internal/service"
	"github.com/exguesich/tagebuch-app/internal/session"
)

// ChooseAction handles GET /choose_action, the landing menu.
func (h *Handler) ChooseAction(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "choose_action", map[string]any{
		"Title": "Was möchtest du tun?",
	})
}

// entryView pairs an entry with its resolved category name for display.
type entryView struct {
	model.Entry
	CategoryName string
}

// ViewEntries handles GET /view_entries: all entries of the caller, in
// insertion order.
func (h *Handler) ViewEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := session.UserIDFromContext(r.Context())

	entries, err := h.entrySvc.List(r.Context(), ownerID)
	if err != nil {
		h.logInternal(r, "view_entries", err)
		h.render(w, http.StatusOK, "view_entries", map[string]any{
			"Title": "Meine Einträge",
			"Error": userMessage(err),
		})
		return
	}

	views := make([]entryView, 0, len(entries))
	names := h.categoryNames(r)
	for _, e := range entries {
		v := entryView{Entry: e}
		if e.CategoryID != nil {
			v.CategoryName = names[*e.CategoryID]
		}
		views = append(views, v)
	}

	h.render(w, http.StatusOK, "view_entries", map[string]any{
		"Title":   "Meine Einträge",
		"Entries": views,
		"Deleted": r.URL.Query().Get("deleted") == "1",
	})
}

// CreateEntryForm handles GET /create_entry.
func (h *Handler) CreateEntryForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "create_entry", map[string]any{
		"Title":         "Neuer Eintrag",
		"Categories":    h.categories(r),
		"CategoryAdded": r.URL.Query().Get("category_added") == "1",
	})
}

// CreateEntry handles POST /create_entry (multipart form). Validation
// failures re-render the form with a message and HTTP 200; nothing is
// inserted. Success redirects to the list view.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := session.UserIDFromContext(r.Context())

	renderError := func(err error, input service.CreateEntryInput) {
		if !service.IsValidation(err) && !errors.Is(err, service.ErrCategoryNotFound) {
			h.logInternal(r, "create_entry", err)
		}
		h.render(w, http.StatusOK, "create_entry", map[string]any{
			"Title":      "Neuer Eintrag",
			"Categories": h.categories(r),
			"Error":      userMessage(err),
			"Form":       input,
		})
	}

	if err := parseSubmission(r); err != nil {
		renderError(service.ErrMissingFields, service.CreateEntryInput{})
		return
	}

	input := service.CreateEntryInput{
		Title:      r.PostFormValue("title"),
		Content:    r.PostFormValue("content"),
		Mood:       r.PostFormValue("mood"),
		Date:       r.PostFormValue("date"),
		CategoryID: r.PostFormValue("category"),
		Image:      h.uploadedImage(r),
	}

	if _, err := h.entrySvc.Create(r.Context(), ownerID, input); err != nil {
		renderError(err, input)
		return
	}

	http.Redirect(w, r, "/view_entries", http.StatusSeeOther)
}

// EditEntryForm handles GET /edit_entry/{id}.
func (h *Handler) EditEntryForm(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := session.UserIDFromContext(r.Context())
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.entrySvc.GetOwned(r.Context(), ownerID, id)
	if err != nil {
		h.entryError(w, r, "edit_entry", err)
		return
	}

	h.render(w, http.StatusOK, "edit_entry", map[string]any{
		"Title":      "Eintrag bearbeiten",
		"Entry":      entry,
		"Categories": h.categories(r),
	})
}

// EditEntry handles POST /edit_entry/{id}. Absent fields keep the
// stored value (merge-over-existing); only the owner may edit.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := session.UserIDFromContext(r.Context())
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	if err := parseSubmission(r); err != nil {
		h.entryError(w, r, "edit_entry", service.ErrMissingFields)
		return
	}

	input := service.UpdateEntryInput{
		Title:      optionalField(r, "title"),
		Content:    optionalField(r, "content"),
		Mood:       optionalField(r, "mood"),
		Date:       optionalField(r, "date"),
		CategoryID: optionalField(r, "category"),
		Image:      h.uploadedImage(r),
	}

	if _, err := h.entrySvc.Update(r.Context(), ownerID, id, input); err != nil {
		if service.IsValidation(err) || errors.Is(err, service.ErrCategoryNotFound) {
			// Re-render the edit form over the unchanged entry.
			entry, getErr := h.entrySvc.GetOwned(r.Context(), ownerID, id)
			if getErr != nil {
				h.entryError(w, r, "edit_entry", getErr)
				return
			}
			h.render(w, http.StatusOK, "edit_entry", map[string]any{
				"Title":      "Eintrag bearbeiten",
				"Entry":      entry,
				"Categories": h.categories(r),
				"Error":      userMessage(err),
			})
			return
		}
		h.entryError(w, r, "edit_entry", err)
		return
	}

	http.Redirect(w, r, "/view_entries", http.StatusSeeOther)
}

// DeleteEntry handles POST /delete_entry/{id}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := session.UserIDFromContext(r.Context())
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	if err := h.entrySvc.Delete(r.Context(), ownerID, id); err != nil {
		h.entryError(w, r, "delete_entry", err)
		return
	}

	http.Redirect(w, r, "/view_entries?deleted=1", http.StatusSeeOther)
}

// entryID parses the {id} route parameter, rendering 404 on garbage.
func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		h.NotFound(w, r)
		return 0, false
	}
	return uint(id), true
}

// entryError maps not-found, unauthorized and internal errors for the
// entry endpoints. Validation errors are handled at the call sites,
// where the originating form is known.
func (h *Handler) entryError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		h.NotFound(w, r)
	case errors.Is(err, service.ErrNotOwner):
		// No detail for the caller; the entry is not theirs.
		http.Redirect(w, r, "/view_entries", http.StatusSeeOther)
	default:
		h.logInternal(r, op, err)
		http.Redirect(w, r, "/view_entries", http.StatusSeeOther)
	}
}

// uploadedImage extracts the optional image part from a multipart form.
func (h *Handler) uploadedImage(r *http.Request) *service.UploadedFile {
	file, header, err := r.FormFile("image")
	if err != nil || header.Filename == "" {
		return nil
	}
	return &service.UploadedFile{Filename: header.Filename, Data: file}
}

// optionalField distinguishes "absent" from "present but empty".
func optionalField(r *http.Request, key string) *string {
	if v, ok := formValue(r, key); ok {
		return &v
	}
	return nil
}

// categories loads the category list for form rendering. A failed load
// leaves the select empty instead of failing the page.
func (h *Handler) categories(r *http.Request) []model.Category {
	cats, err := h.catSvc.List(r.Context())
	if err != nil {
		h.logInternal(r, "list_categories", err)
		return nil
	}
	return cats
}

func (h *Handler) categoryNames(r *http.Request) map[uint]string {
	names := make(map[uint]string)
	for _, c := range h.categories(r) {
		names[c.ID] = c.Name
	}
	return names
}
