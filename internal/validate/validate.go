// Package validate wraps go-playground/validator for request DTOs.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"stayloft/internal/domain"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a tagged DTO and folds all failures into one
// domain.ErrInvalid so handlers map it to a 400.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalid, strings.Join(parts, "; "))
}
