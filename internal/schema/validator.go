// Package schema validates outgoing events before they are published.
package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator checks events against their struct-tag constraints.
type Validator struct {
	v *validator.Validate
}

// New creates a validator. Safe for concurrent use.
func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns an error describing every violated constraint of event.
func (v *Validator) Validate(event any) error {
	if err := v.v.Struct(event); err != nil {
		return fmt.Errorf("schema: invalid event: %w", err)
	}
	return nil
}
