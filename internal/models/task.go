package models

import "time"

type TaskStatus string

const (
	TaskStatusToDo  TaskStatus = "to do"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        time.Time  `json:"date"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date" validate:"required"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof='to do' doing done"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof='to do' doing done"`
}

// EditTaskRequest replaces a task's editable fields; the date must lie in the future.
type EditTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date" validate:"required"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof='to do' doing done"`
}
