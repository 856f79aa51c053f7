package workbench

import (
	"context"
	"fmt"
	"strings"

	"gramsetu-be/models"
)

// ActionDispatcher issues problem mutations. No optimistic local update is
// ever applied: a confirmed mutation forces exactly one reload, a failed one
// leaves the list untouched and reloads nothing.
type ActionDispatcher struct {
	client    *Client
	scheduler *ReloadScheduler
}

func NewActionDispatcher(client *Client, scheduler *ReloadScheduler) *ActionDispatcher {
	return &ActionDispatcher{client: client, scheduler: scheduler}
}

// SetStatus changes a problem's status, optionally attaching remarks and
// assigning the problem to the acting officer. Input validation happens
// before any request goes out.
func (d *ActionDispatcher) SetStatus(ctx context.Context, problemID string, status string, remarks *string, assignToSelf bool) error {
	if problemID == "" {
		return fmt.Errorf("problem id is required")
	}
	parsed, ok := models.ParseStatus(status)
	if !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	if remarks != nil && strings.TrimSpace(*remarks) == "" {
		return fmt.Errorf("remark must not be empty")
	}

	err := d.client.UpdateStatus(ctx, problemID, StatusUpdate{
		Status:         parsed,
		OfficerRemarks: remarks,
		AssignToSelf:   assignToSelf,
	})
	if err != nil {
		return err
	}

	d.scheduler.ForceReload()
	return nil
}

// Escalate flags a problem for admin attention with optional remarks.
func (d *ActionDispatcher) Escalate(ctx context.Context, problemID string, remarks *string) error {
	if problemID == "" {
		return fmt.Errorf("problem id is required")
	}
	if remarks != nil && strings.TrimSpace(*remarks) == "" {
		remarks = nil
	}

	if err := d.client.Escalate(ctx, problemID, remarks); err != nil {
		return err
	}

	d.scheduler.ForceReload()
	return nil
}
