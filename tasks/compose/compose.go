// Package compose drafts a task title and a time/size estimate from a
// free-text description using a text-generation service.
package compose

import (
	"context"
	"strings"

	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/tasks"
)

// Composer is the capability the board needs from a text-generation service.
type Composer interface {
	// SuggestTitle returns a short title for the description.
	SuggestTitle(ctx context.Context, description string) (string, error)

	// Estimate returns the time and size estimate for the description.
	Estimate(ctx context.Context, description string) (tasks.Estimate, error)
}

// Suggestion is a drafted title plus estimate.
type Suggestion struct {
	Title    string         `json:"title"`
	Estimate tasks.Estimate `json:"estimate"`
}

// Compose asks c for both a title and an estimate. The first failure
// aborts and is returned unchanged; a blank title counts as a failure.
func Compose(ctx context.Context, c Composer, description string) (Suggestion, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Suggestion{}, errors.NewValidationError("description is required", map[string]any{
			"description": "required",
		})
	}

	title, err := c.SuggestTitle(ctx, description)
	if err != nil {
		return Suggestion{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Suggestion{}, errors.NewValidationError("composer returned an empty title")
	}

	estimate, err := c.Estimate(ctx, description)
	if err != nil {
		return Suggestion{}, err
	}

	return Suggestion{Title: title, Estimate: estimate}, nil
}

// Disabled is used when no text-generation service is configured.
type Disabled struct{}

var _ Composer = Disabled{}

func (Disabled) SuggestTitle(context.Context, string) (string, error) {
	return "", errNotConfigured()
}

func (Disabled) Estimate(context.Context, string) (tasks.Estimate, error) {
	return tasks.Estimate{}, errNotConfigured()
}

func errNotConfigured() error {
	return errors.NewTransportError("composer not configured", nil)
}

// Stub returns fixed answers. It is meant for tests and offline use.
type Stub struct {
	Suggestion Suggestion
	// Err, when set, is returned by every call.
	Err error
}

var _ Composer = (*Stub)(nil)

func (s *Stub) SuggestTitle(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Suggestion.Title, nil
}

func (s *Stub) Estimate(ctx context.Context, _ string) (tasks.Estimate, error) {
	if err := ctx.Err(); err != nil {
		return tasks.Estimate{}, err
	}
	if s.Err != nil {
		return tasks.Estimate{}, s.Err
	}
	return s.Suggestion.Estimate, nil
}
