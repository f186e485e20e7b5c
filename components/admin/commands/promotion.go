package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
)

// AddPromotionInput carries the new promotion. Result is filled on success.
type AddPromotionInput struct {
	Promotion admin.PromotionInput `json:"promotion"`
	Result    *admin.Promotion     `json:"-"`
}

type promotionService interface {
	AddPromotion(ctx context.Context, input admin.PromotionInput) (admin.Promotion, error)
}

// AddPromotionCommand validates and stores a promotion.
type AddPromotionCommand struct {
	service   promotionService
	telemetry Telemetry
}

// NewAddPromotionCommand creates the command.
func NewAddPromotionCommand(service promotionService, telemetry Telemetry) *AddPromotionCommand {
	return &AddPromotionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddPromotionInput] = (*AddPromotionCommand)(nil)

func (c *AddPromotionCommand) Execute(ctx context.Context, msg AddPromotionInput) error {
	if c.service == nil {
		return errors.New("promotion command requires service")
	}
	promo, err := c.service.AddPromotion(ctx, msg.Promotion)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = promo
	}
	c.telemetry.Record(ctx, "admin.command.promotion.add", map[string]any{
		"id":   promo.ID,
		"code": promo.Code,
	})
	return nil
}
