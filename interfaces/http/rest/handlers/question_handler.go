package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"stackecho/application/store"
	"stackecho/domain/core/entities"
	"stackecho/domain/core/valueobjects"
	"stackecho/pkg/api"
	apperrors "stackecho/pkg/errors"
	"stackecho/pkg/validation"
)

// QuestionHandler handles question and answer requests
type QuestionHandler struct {
	sessions StoreProvider
	logger   *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(sessions StoreProvider, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{sessions: sessions, logger: logger}
}

// AskRequest represents the request body for asking a question
type AskRequest struct {
	Title   string   `json:"title" validate:"required,min=10"`
	Content string   `json:"content" validate:"required,min=30"`
	Tags    []string `json:"tags" validate:"min=1,max=5"`
}

// AnswerRequest represents the request body for posting an answer
type AnswerRequest struct {
	Content string `json:"content" validate:"required,min=30"`
}

// VoteRequest represents the request body for a vote
type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// ListResponse is the filtered question list with the filters applied
type ListResponse struct {
	Questions []entities.Question `json:"questions"`
	Total     int                 `json:"total"`
	Filters   FiltersResponse     `json:"filters"`
}

// FiltersResponse echoes the session's filter state
type FiltersResponse struct {
	SearchQuery  string                `json:"searchQuery"`
	SelectedTags []string              `json:"selectedTags"`
	SortBy       valueobjects.SortMode `json:"sortBy"`
}

// List handles GET /questions?q=&tags=a,b&sort=
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}

	query := r.URL.Query()
	tags := valueobjects.SplitTags(query.Get("tags"))
	for i, t := range tags {
		tags[i] = valueobjects.NormalizeTag(t)
	}
	s.SetFilters(store.Filters{
		SearchQuery:  query.Get("q"),
		SelectedTags: tags,
		SortBy:       valueobjects.ParseSortMode(query.Get("sort")),
	})

	questions := s.FilteredQuestions()
	f := s.Filters()
	selected := f.SelectedTags
	if selected == nil {
		selected = []string{}
	}
	api.Success(w, http.StatusOK, ListResponse{
		Questions: questions,
		Total:     len(questions),
		Filters: FiltersResponse{
			SearchQuery:  f.SearchQuery,
			SelectedTags: selected,
			SortBy:       f.SortBy,
		},
	})
}

// Create handles POST /questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	if err := requireViewer(s); err != nil {
		api.FromError(w, err)
		return
	}

	var req AskRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.FromError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.Struct(req); err != nil {
		api.FromError(w, err)
		return
	}
	tags := valueobjects.NormalizeTags(req.Tags)
	if len(tags) == 0 {
		api.FromError(w, apperrors.NewValidation("tags must contain at least 1 item(s)"))
		return
	}

	q, ok := s.AddQuestion(entities.QuestionDraft{Title: req.Title, Content: req.Content, Tags: tags})
	if !ok {
		api.FromError(w, apperrors.NewUnauthorized("sign in to continue"))
		return
	}
	h.logger.Debug("Question asked",
		zap.String("questionID", q.ID),
		zap.Strings("tags", q.Tags),
	)
	api.Success(w, http.StatusCreated, q)
}

// Get handles GET /questions/{id}. Each fetch counts as a view.
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	s.IncrementViews(id)
	q, ok := s.QuestionByID(id)
	if !ok {
		api.FromError(w, errQuestionNotFound)
		return
	}
	api.Success(w, http.StatusOK, q)
}

// Vote handles POST /questions/{id}/vote
func (h *QuestionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	s, id, dir, ok := h.voteInput(w, r)
	if !ok {
		return
	}
	s.VoteQuestion(id, dir)
	q, _ := s.QuestionByID(id)
	api.Success(w, http.StatusOK, q)
}

// Bookmark handles POST /questions/{id}/bookmark
func (h *QuestionHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	s, q, ok := h.viewerQuestion(w, r)
	if !ok {
		return
	}
	s.BookmarkQuestion(q.ID)
	q, _ = s.QuestionByID(q.ID)
	api.Success(w, http.StatusOK, q)
}

// Answer handles POST /questions/{id}/answers
func (h *QuestionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	s, q, ok := h.viewerQuestion(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.FromError(w, err)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.Struct(req); err != nil {
		api.FromError(w, err)
		return
	}

	answer, ok := s.AddAnswer(q.ID, req.Content)
	if !ok {
		// Question removed or viewer signed out concurrently.
		api.FromError(w, errQuestionNotFound)
		return
	}
	api.Success(w, http.StatusCreated, answer)
}

// VoteAnswer handles POST /questions/{id}/answers/{answerID}/vote
func (h *QuestionHandler) VoteAnswer(w http.ResponseWriter, r *http.Request) {
	s, id, dir, ok := h.voteInput(w, r)
	if !ok {
		return
	}
	answerID := chi.URLParam(r, "answerID")
	q, _ := s.QuestionByID(id)
	if q.FindAnswer(answerID) == nil {
		api.FromError(w, errAnswerNotFound)
		return
	}

	s.VoteAnswer(id, answerID, dir)
	q, _ = s.QuestionByID(id)
	api.Success(w, http.StatusOK, *q.FindAnswer(answerID))
}

// Accept handles POST /questions/{id}/answers/{answerID}/accept. Only the
// question's author may accept; repeating the call clears the mark.
func (h *QuestionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	s, q, ok := h.viewerQuestion(w, r)
	if !ok {
		return
	}
	viewer, _ := s.CurrentUser()
	if viewer.ID != q.Author.ID {
		api.FromError(w, apperrors.NewForbidden("only the question author can accept an answer"))
		return
	}
	answerID := chi.URLParam(r, "answerID")
	if q.FindAnswer(answerID) == nil {
		api.FromError(w, errAnswerNotFound)
		return
	}

	s.AcceptAnswer(q.ID, answerID)
	q, _ = s.QuestionByID(q.ID)
	api.Success(w, http.StatusOK, q)
}

var (
	errQuestionNotFound = apperrors.NewNotFound("question not found")
	errAnswerNotFound   = apperrors.NewNotFound("answer not found")
)

// viewerQuestion resolves a signed-in viewer's store and the addressed
// question, writing the error response when either is missing.
func (h *QuestionHandler) viewerQuestion(w http.ResponseWriter, r *http.Request) (*store.Store, entities.Question, bool) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return nil, entities.Question{}, false
	}
	if err := requireViewer(s); err != nil {
		api.FromError(w, err)
		return nil, entities.Question{}, false
	}
	q, ok := s.QuestionByID(chi.URLParam(r, "id"))
	if !ok {
		api.FromError(w, errQuestionNotFound)
		return nil, entities.Question{}, false
	}
	return s, q, true
}

func (h *QuestionHandler) voteInput(w http.ResponseWriter, r *http.Request) (*store.Store, string, valueobjects.VoteDirection, bool) {
	s, q, ok := h.viewerQuestion(w, r)
	if !ok {
		return nil, "", valueobjects.VoteNone, false
	}

	var req VoteRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.FromError(w, err)
		return nil, "", valueobjects.VoteNone, false
	}
	if err := validation.Struct(req); err != nil {
		api.FromError(w, err)
		return nil, "", valueobjects.VoteNone, false
	}
	dir, err := valueobjects.ParseVoteDirection(req.Direction)
	if err != nil {
		api.FromError(w, err)
		return nil, "", valueobjects.VoteNone, false
	}
	return s, q.ID, dir, true
}
