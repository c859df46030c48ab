package repository

import (
	"database/sql"
	"time"

	"taskify/internal/models"
)

type TaskRepository interface {
	Store[models.Task]
}

var taskTable = Table[models.Task]{
	Name:       "tasks",
	Columns:    []string{"user_id", "title", "description", "date", "status"},
	Filterable: []string{"user_id", "status"},
	OrderBy:    "date ASC, created_at ASC",
	ID:         func(t *models.Task) *string { return &t.ID },
	Values: func(t *models.Task) []any {
		return []any{t.UserID, t.Title, t.Description, t.Date, string(t.Status)}
	},
	Stamps: func(t *models.Task) (*time.Time, *time.Time) { return &t.CreatedAt, &t.UpdatedAt },
	Scan:   scanTask,
}

func scanTask(row rowScanner, t *models.Task) error {
	var status string
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Date, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	t.Status = models.TaskStatus(status)
	return nil
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return NewStore(db, taskTable)
}
