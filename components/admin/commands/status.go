package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
)

// UpdateStatusInput targets one record of a collection.
type UpdateStatusInput struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Status     string `json:"status"`
}

type statusService interface {
	UpdateUserStatus(ctx context.Context, id, status string) (admin.User, error)
	UpdateDriverStatus(ctx context.Context, id, status string) (admin.Driver, error)
	UpdateRestaurantStatus(ctx context.Context, id, status string) (admin.Restaurant, error)
	UpdatePromotionStatus(ctx context.Context, id, status string) (admin.Promotion, error)
}

// UpdateStatusCommand routes status changes to the matching store mutation.
type UpdateStatusCommand struct {
	service   statusService
	telemetry Telemetry
}

// NewUpdateStatusCommand creates the command.
func NewUpdateStatusCommand(service statusService, telemetry Telemetry) *UpdateStatusCommand {
	return &UpdateStatusCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateStatusInput] = (*UpdateStatusCommand)(nil)

// Execute applies the status change.
func (c *UpdateStatusCommand) Execute(ctx context.Context, msg UpdateStatusInput) error {
	if c.service == nil {
		return errors.New("status command requires service")
	}
	if msg.ID == "" {
		return errors.New("status command requires id")
	}
	var err error
	switch msg.Collection {
	case admin.CollectionUsers:
		_, err = c.service.UpdateUserStatus(ctx, msg.ID, msg.Status)
	case admin.CollectionDrivers:
		_, err = c.service.UpdateDriverStatus(ctx, msg.ID, msg.Status)
	case admin.CollectionRestaurants:
		_, err = c.service.UpdateRestaurantStatus(ctx, msg.ID, msg.Status)
	case admin.CollectionPromotions:
		_, err = c.service.UpdatePromotionStatus(ctx, msg.ID, msg.Status)
	default:
		return fmt.Errorf("status command: %w %q", admin.ErrUnknownCollection, msg.Collection)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.command.status", map[string]any{
		"collection": msg.Collection,
		"id":         msg.ID,
		"status":     msg.Status,
	})
	return nil
}
