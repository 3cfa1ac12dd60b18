package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stackecho/application/queries"
	"stackecho/pkg/api"
)

// DirectoryHandler serves the member and tag directories and the
// viewer's own profile
type DirectoryHandler struct {
	sessions StoreProvider
	users    *queries.UserDirectory
	tags     *queries.TagDirectory
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(sessions StoreProvider, users *queries.UserDirectory, tags *queries.TagDirectory) *DirectoryHandler {
	return &DirectoryHandler{sessions: sessions, users: users, tags: tags}
}

// ListUsers handles GET /users?q=&sort=
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	api.Success(w, http.StatusOK, h.users.List(query.Get("q"), queries.ParseUserSort(query.Get("sort"))))
}

// GetUser handles GET /users/{id}
func (h *DirectoryHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	detail, err := h.users.Detail(chi.URLParam(r, "id"), s)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, detail)
}

// ListTags handles GET /tags?q=&sort=
func (h *DirectoryHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	query := r.URL.Query()
	api.Success(w, http.StatusOK, h.tags.List(query.Get("q"), queries.ParseTagSort(query.Get("sort")), s))
}

// Profile handles GET /profile
func (h *DirectoryHandler) Profile(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	view, err := queries.BuildProfile(s)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, view)
}
