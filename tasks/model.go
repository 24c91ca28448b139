package tasks

import (
	"strings"
	"time"
)

// TaskType distinguishes information requests from physical tasks.
type TaskType string

const (
	TypeInfo TaskType = "info"
	TypeTask TaskType = "task"
)

// Valid reports whether the type is one of the known task types.
func (t TaskType) Valid() bool {
	return t == TypeInfo || t == TypeTask
}

func (t TaskType) String() string {
	return string(t)
}

// Size is the coarse effort estimate of a task.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Valid reports whether the size is one of small, medium or large.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Estimate is a time and size guess for a task. Time is in minutes,
// with 0 meaning under a minute.
type Estimate struct {
	Time int  `json:"time"`
	Size Size `json:"size"`
}

// Task is one help request on the board.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Requester   string   `json:"requester"`
	TaskType    TaskType `json:"taskType"`
	// "lat,lng" or empty when unknown
	Location  string    `json:"location"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`

	TimeEstimate    *int   `json:"timeEstimate,omitempty"`
	SizeEstimate    Size   `json:"sizeEstimate,omitempty"`
	CompletionNotes string `json:"completionNotes,omitempty"`
}

// CreateRequest carries the caller supplied fields of a new task.
type CreateRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required,max=5000"`
	Requester    string   `json:"requester" validate:"required,max=100"`
	TaskType     TaskType `json:"taskType" validate:"required,oneof=info task"`
	Location     string   `json:"location" validate:"omitempty,latlng"`
	TimeEstimate *int     `json:"timeEstimate,omitempty" validate:"omitnil,gte=0"`
	SizeEstimate Size     `json:"sizeEstimate,omitempty" validate:"omitempty,oneof=small medium large"`
}

// Normalize trims surrounding whitespace from every text field.
func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Requester = strings.TrimSpace(r.Requester)
	r.TaskType = TaskType(strings.TrimSpace(string(r.TaskType)))
	r.Location = strings.TrimSpace(r.Location)
	r.SizeEstimate = Size(strings.TrimSpace(string(r.SizeEstimate)))
}

// NewTask validates req and builds an open task from it. The id and
// creation time are left for the store to assign.
func NewTask(req CreateRequest) (*Task, error) {
	req.Normalize()
	if err := Validate(req); err != nil {
		return nil, err
	}

	task := &Task{
		Title:        req.Title,
		Description:  req.Description,
		Requester:    req.Requester,
		TaskType:     req.TaskType,
		Location:     req.Location,
		Completed:    false,
		SizeEstimate: req.SizeEstimate,
	}
	if req.TimeEstimate != nil {
		minutes := *req.TimeEstimate
		task.TimeEstimate = &minutes
	}
	if loc, err := ParseLocation(req.Location); err == nil && loc != nil {
		task.Location = loc.String()
	}
	return task, nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.TimeEstimate != nil {
		minutes := *t.TimeEstimate
		c.TimeEstimate = &minutes
	}
	return &c
}

// Complete marks the task as done. Notes replace earlier notes only when non-empty.
func (t *Task) Complete(notes string) {
	t.Completed = true
	if notes = strings.TrimSpace(notes); notes != "" {
		t.CompletionNotes = notes
	}
}
