package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
)

// Preference actions accepted by UpdatePreferencesCommand.
const (
	PreferenceToggleSidebar  = "toggle_sidebar"
	PreferenceToggleLanguage = "toggle_language"
	PreferenceSetCurrency    = "set_currency"
)

// UpdatePreferencesInput selects a preference action.
type UpdatePreferencesInput struct {
	Action   string `json:"action"`
	Currency string `json:"currency,omitempty"`
}

type preferenceService interface {
	ToggleSidebar(ctx context.Context) admin.Preferences
	ToggleLanguage(ctx context.Context) admin.Preferences
	SetCurrency(ctx context.Context, code string) (admin.Preferences, error)
}

// UpdatePreferencesCommand changes operator UI settings.
type UpdatePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewUpdatePreferencesCommand creates the command.
func NewUpdatePreferencesCommand(service preferenceService, telemetry Telemetry) *UpdatePreferencesCommand {
	return &UpdatePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdatePreferencesInput] = (*UpdatePreferencesCommand)(nil)

func (c *UpdatePreferencesCommand) Execute(ctx context.Context, msg UpdatePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	var prefs admin.Preferences
	switch msg.Action {
	case PreferenceToggleSidebar:
		prefs = c.service.ToggleSidebar(ctx)
	case PreferenceToggleLanguage:
		prefs = c.service.ToggleLanguage(ctx)
	case PreferenceSetCurrency:
		var err error
		if prefs, err = c.service.SetCurrency(ctx, msg.Currency); err != nil {
			return err
		}
	default:
		return fmt.Errorf("preferences command: %w %q", admin.ErrUnknownAction, msg.Action)
	}
	c.telemetry.Record(ctx, "admin.command.preferences", map[string]any{
		"action":   msg.Action,
		"language": prefs.Language,
		"currency": prefs.Currency,
	})
	return nil
}
