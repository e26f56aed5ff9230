package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-task-manager/internal/model"
	"go-task-manager/pkg/apierror"
)

const taskColumns = `id, title, description, status, priority, assignee, tags,
	        estimate_hours, archived, due_date, created_at, updated_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) List(ctx context.Context, query model.TaskQuery) ([]model.Task, model.Meta, error) {
	query.Normalize()

	where, args := buildTaskFilter(query)
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count tasks: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Size - 1) / query.Size
	}
	meta := model.Meta{Page: query.Page, Size: query.Size, Total: total, TotalPages: totalPages}

	// SortBy and Direction come out of Normalize's allow-list, never from
	// raw request input.
	argIdx := len(args) + 1
	dataQuery := fmt.Sprintf(
		`SELECT %s FROM tasks %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, query.SortBy, query.Direction, argIdx, argIdx+1)
	args = append(args, query.Size, query.Page*query.Size)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, meta, rows.Err()
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Task{}, apierror.New("NOT_FOUND", "task not found", id, http.StatusNotFound)
	}

	var t model.Task
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns), id)
	err := scanTask(row, &t)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, apierror.New("NOT_FOUND", "task not found", id, http.StatusNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("find task by id: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t model.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, assignee, tags,
		                    estimate_hours, archived, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.Assignee, t.Tags,
		t.EstimateHours, t.Archived, t.DueDate, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, t model.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
		        assignee = $6, tags = $7, estimate_hours = $8, archived = $9,
		        due_date = $10, updated_at = $11
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.Assignee, t.Tags,
		t.EstimateHours, t.Archived, t.DueDate, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.New("NOT_FOUND", "task not found", t.ID, http.StatusNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apierror.New("NOT_FOUND", "task not found", id, http.StatusNotFound)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.New("NOT_FOUND", "task not found", id, http.StatusNotFound)
	}
	return nil
}

// buildTaskFilter turns the optional filters of a normalized TaskQuery into
// an ordered set of AND-combined WHERE fragments with numbered placeholders.
func buildTaskFilter(query model.TaskQuery) ([]string, []any) {
	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if status := strings.TrimSpace(query.Status); status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, status)
		argIdx++
	}
	if priority := strings.TrimSpace(query.Priority); priority != "" {
		where = append(where, fmt.Sprintf("priority = $%d", argIdx))
		args = append(args, priority)
		argIdx++
	}
	if query.Archived != nil {
		where = append(where, fmt.Sprintf("archived = $%d", argIdx))
		args = append(args, *query.Archived)
		argIdx++
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		where = append(where, fmt.Sprintf(
			"(lower(title) LIKE lower($%d) OR lower(description) LIKE lower($%d))", argIdx, argIdx))
		args = append(args, "%"+search+"%")
		argIdx++
	}
	if query.DueFrom != nil {
		where = append(where, fmt.Sprintf("due_date >= $%d", argIdx))
		args = append(args, *query.DueFrom)
		argIdx++
	}
	if query.DueTo != nil {
		where = append(where, fmt.Sprintf("due_date <= $%d", argIdx))
		args = append(args, *query.DueTo)
		argIdx++
	}

	return where, args
}

func scanTask(row pgx.Row, t *model.Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Assignee, &t.Tags, &t.EstimateHours, &t.Archived, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt)
}
