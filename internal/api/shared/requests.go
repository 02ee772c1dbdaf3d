package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/filetrack/internal/domain"
)

var validate = validator.New()

// ValidateRequest checks v against its validate tags. A failure wraps
// domain.ErrValidation and names the offending fields and rules, never
// their values.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(parts, ", "))
}
