package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
)

// VerifyDriverInput names the driver to verify.
type VerifyDriverInput struct {
	DriverID string `json:"driver_id"`
}

type verifyService interface {
	VerifyDriver(ctx context.Context, id string) (admin.Driver, error)
}

// VerifyDriverCommand marks a pending driver as verified.
type VerifyDriverCommand struct {
	service   verifyService
	telemetry Telemetry
}

// NewVerifyDriverCommand creates the command.
func NewVerifyDriverCommand(service verifyService, telemetry Telemetry) *VerifyDriverCommand {
	return &VerifyDriverCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[VerifyDriverInput] = (*VerifyDriverCommand)(nil)

func (c *VerifyDriverCommand) Execute(ctx context.Context, msg VerifyDriverInput) error {
	if c.service == nil {
		return errors.New("verify command requires service")
	}
	if msg.DriverID == "" {
		return errors.New("verify command requires driver id")
	}
	if _, err := c.service.VerifyDriver(ctx, msg.DriverID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.command.verify", map[string]any{"driver_id": msg.DriverID})
	return nil
}
