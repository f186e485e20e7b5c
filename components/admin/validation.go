package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrInvalidPromotion = errors.New("admin: invalid promotion")

const promotionSchemaName = "promotion.json"

const promotionSchema = `{
  "type": "object",
  "required": ["code", "type", "value"],
  "properties": {
    "code": {"type": "string", "pattern": "^[A-Z0-9]{3,20}$"},
    "type": {"enum": ["percentage", "fixed"]},
    "value": {"type": "number", "exclusiveMinimum": 0},
    "minOrder": {"type": "number", "minimum": 0},
    "maxUses": {"type": "integer", "minimum": 0},
    "status": {"enum": ["active", "paused", "expired"]},
    "expiresAt": {"type": "string", "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"}
  }
}`

// PromotionValidator checks promotion payloads before they are stored.
type PromotionValidator interface {
	Validate(input PromotionInput) error
}

// SchemaPromotionValidator validates promotions against a JSON schema.
type SchemaPromotionValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewSchemaPromotionValidator builds the validator; the schema compiles lazily.
func NewSchemaPromotionValidator() *SchemaPromotionValidator {
	return &SchemaPromotionValidator{}
}

// Validate reports ErrInvalidPromotion when the payload fails the schema.
func (v *SchemaPromotionValidator) Validate(input PromotionInput) error {
	schema, err := v.compiled()
	if err != nil {
		return err
	}
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("admin: marshal promotion: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("admin: normalize promotion: %w", err)
	}
	if input.Status == "" {
		delete(payload, "status")
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPromotion, err)
	}
	if input.Type == "percentage" && input.Value > 100 {
		return fmt.Errorf("%w: percentage value %.2f exceeds 100", ErrInvalidPromotion, input.Value)
	}
	return nil
}

func (v *SchemaPromotionValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(promotionSchemaName, strings.NewReader(promotionSchema)); err != nil {
			v.err = fmt.Errorf("admin: load promotion schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(promotionSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("admin: compile promotion schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

func normalizePromotionInput(input PromotionInput) PromotionInput {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	input.ExpiresAt = strings.TrimSpace(input.ExpiresAt)
	return input
}
