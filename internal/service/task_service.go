package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-task-manager/internal/event"
	"go-task-manager/internal/model"
	"go-task-manager/pkg/apierror"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 1000
	maxAssigneeLen    = 80
	maxTagsLen        = 255
)

type TaskRepository interface {
	List(ctx context.Context, query model.TaskQuery) ([]model.Task, model.Meta, error)
	FindByID(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, task model.Task) error
	Update(ctx context.Context, task model.Task) error
	Delete(ctx context.Context, id string) error
}

type TaskService struct {
	repo   TaskRepository
	events *event.Publisher
}

func NewTaskService(repo TaskRepository, events *event.Publisher) *TaskService {
	return &TaskService{repo: repo, events: events}
}

func (s *TaskService) List(ctx context.Context, query model.TaskQuery) ([]model.Task, model.Meta, error) {
	query.Normalize()
	return s.repo.List(ctx, query)
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	fields := validateTaskFields(req)

	status := model.TaskStatusTodo
	if strings.TrimSpace(req.Status) != "" {
		status = model.TaskStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			fields["status"] = "must be one of TODO, IN_PROGRESS, DONE"
		}
	}

	priority := model.TaskPriorityMedium
	if strings.TrimSpace(req.Priority) != "" {
		priority = model.TaskPriority(strings.ToUpper(strings.TrimSpace(req.Priority)))
		if !priority.Valid() {
			fields["priority"] = "must be one of LOW, MEDIUM, HIGH"
		}
	}

	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		fields["due_date"] = "must be a date in YYYY-MM-DD format"
	}

	if len(fields) > 0 {
		return model.Task{}, apierror.NewValidation(fields)
	}

	archived := false
	if req.Archived != nil {
		archived = *req.Archived
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Status:        status,
		Priority:      priority,
		Assignee:      strings.TrimSpace(req.Assignee),
		Tags:          strings.TrimSpace(req.Tags),
		EstimateHours: req.EstimateHours,
		Archived:      archived,
		DueDate:       dueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return model.Task{}, err
	}

	s.events.PublishTask(ctx, event.ActionTaskCreated, task)
	return task, nil
}

// Update replaces the record with the request body. Absent status and
// priority keep their current values; every other field is overwritten,
// including fields the request leaves empty.
func (s *TaskService) Update(ctx context.Context, id string, req model.TaskRequest) (model.Task, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	fields := validateTaskFields(req)

	status := existing.Status
	if strings.TrimSpace(req.Status) != "" {
		status = model.TaskStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			fields["status"] = "must be one of TODO, IN_PROGRESS, DONE"
		}
	}

	priority := existing.Priority
	if strings.TrimSpace(req.Priority) != "" {
		priority = model.TaskPriority(strings.ToUpper(strings.TrimSpace(req.Priority)))
		if !priority.Valid() {
			fields["priority"] = "must be one of LOW, MEDIUM, HIGH"
		}
	}

	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		fields["due_date"] = "must be a date in YYYY-MM-DD format"
	}

	if len(fields) > 0 {
		return model.Task{}, apierror.NewValidation(fields)
	}

	existing.Title = strings.TrimSpace(req.Title)
	existing.Description = req.Description
	existing.Status = status
	existing.Priority = priority
	existing.Assignee = strings.TrimSpace(req.Assignee)
	existing.Tags = strings.TrimSpace(req.Tags)
	existing.EstimateHours = req.EstimateHours
	if req.Archived != nil {
		existing.Archived = *req.Archived
	}
	existing.DueDate = dueDate
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return model.Task{}, err
	}

	s.events.PublishTask(ctx, event.ActionTaskUpdated, existing)
	return existing, nil
}

// Patch merges only the fields present in the request into the record, then
// validates the merged result before persisting it.
func (s *TaskService) Patch(ctx context.Context, id string, req model.TaskPatchRequest) (model.Task, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	merged := existing
	if req.Title != nil {
		merged.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.Assignee != nil {
		merged.Assignee = strings.TrimSpace(*req.Assignee)
	}
	if req.Tags != nil {
		merged.Tags = strings.TrimSpace(*req.Tags)
	}
	if req.EstimateHours != nil {
		merged.EstimateHours = req.EstimateHours
	}
	if req.Archived != nil {
		merged.Archived = *req.Archived
	}

	fields := map[string]string{}
	if req.Status != nil {
		merged.Status = model.TaskStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !merged.Status.Valid() {
			fields["status"] = "must be one of TODO, IN_PROGRESS, DONE"
		}
	}
	if req.Priority != nil {
		merged.Priority = model.TaskPriority(strings.ToUpper(strings.TrimSpace(*req.Priority)))
		if !merged.Priority.Valid() {
			fields["priority"] = "must be one of LOW, MEDIUM, HIGH"
		}
	}
	if req.DueDate != nil {
		dueDate, ok := parseDueDate(*req.DueDate)
		if !ok {
			fields["due_date"] = "must be a date in YYYY-MM-DD format"
		}
		merged.DueDate = dueDate
	}

	for field, message := range validateTaskValues(merged.Title, merged.Description, merged.Assignee, merged.Tags, merged.EstimateHours) {
		fields[field] = message
	}
	if len(fields) > 0 {
		return model.Task{}, apierror.NewValidation(fields)
	}

	merged.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, merged); err != nil {
		return model.Task{}, err
	}

	s.events.PublishTask(ctx, event.ActionTaskUpdated, merged)
	return merged, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.events.PublishTask(ctx, event.ActionTaskDeleted, existing)
	return nil
}

func validateTaskFields(req model.TaskRequest) map[string]string {
	return validateTaskValues(strings.TrimSpace(req.Title), req.Description,
		strings.TrimSpace(req.Assignee), strings.TrimSpace(req.Tags), req.EstimateHours)
}

func validateTaskValues(title, description, assignee, tags string, estimateHours *int) map[string]string {
	fields := map[string]string{}

	if title == "" {
		fields["title"] = "title is required"
	} else if len(title) > maxTitleLen {
		fields["title"] = "must be at most 120 characters"
	}
	if len(description) > maxDescriptionLen {
		fields["description"] = "must be at most 1000 characters"
	}
	if len(assignee) > maxAssigneeLen {
		fields["assignee"] = "must be at most 80 characters"
	}
	if len(tags) > maxTagsLen {
		fields["tags"] = "must be at most 255 characters"
	}
	if estimateHours != nil && *estimateHours < 0 {
		fields["estimate_hours"] = "must be zero or positive"
	}

	return fields
}

// parseDueDate returns (nil, true) for an empty input, the parsed date for a
// valid YYYY-MM-DD value, and ok=false otherwise.
func parseDueDate(raw string) (*time.Time, bool) {
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
