package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"go-task-manager/internal/model"
	"go-task-manager/internal/service"
	"go-task-manager/pkg/apierror"
)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := model.TaskQuery{
		Search:    strings.TrimSpace(params.Get("q")),
		SortBy:    params.Get("sortBy"),
		Direction: params.Get("direction"),
		Page:      parseIntOrDefault(params.Get("page"), 0),
		Size:      parseIntOrDefault(params.Get("size"), model.DefaultPageSize),
	}

	if raw := strings.TrimSpace(params.Get("status")); raw != "" {
		status := model.TaskStatus(strings.ToUpper(raw))
		if !status.Valid() {
			writeError(w, apierror.New("BAD_REQUEST", "invalid status filter", "status", http.StatusBadRequest))
			return
		}
		query.Status = string(status)
	}

	if raw := strings.TrimSpace(params.Get("priority")); raw != "" {
		priority := model.TaskPriority(strings.ToUpper(raw))
		if !priority.Valid() {
			writeError(w, apierror.New("BAD_REQUEST", "invalid priority filter", "priority", http.StatusBadRequest))
			return
		}
		query.Priority = string(priority)
	}

	if raw := strings.TrimSpace(params.Get("archived")); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "invalid archived filter", "archived", http.StatusBadRequest))
			return
		}
		query.Archived = &archived
	}

	dueFrom, ok := parseDateParam(params.Get("dueDateFrom"))
	if !ok {
		writeError(w, apierror.New("BAD_REQUEST", "invalid date, expected YYYY-MM-DD", "dueDateFrom", http.StatusBadRequest))
		return
	}
	query.DueFrom = dueFrom

	dueTo, ok := parseDateParam(params.Get("dueDateTo"))
	if !ok {
		writeError(w, apierror.New("BAD_REQUEST", "invalid date, expected YYYY-MM-DD", "dueDateTo", http.StatusBadRequest))
		return
	}
	query.DueTo = dueTo

	items, meta, err := h.service.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.TaskListData{Items: items}, &meta)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, task, nil)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	task, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, task, nil)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, task, nil)
}

func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.TaskPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	task, err := h.service.Patch(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, task, nil)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseDateParam(raw string) (*time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, true
	}

	parsed, err := time.Parse(model.DueDateLayout, trimmed)
	if err != nil {
		return nil, false
	}

	return &parsed, true
}
