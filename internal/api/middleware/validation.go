package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "ramble/internal/api/errors"
)

// Validator is implemented by requests that carry rules binding tags
// cannot express.
type Validator interface {
	Validate() error
}

// BindForm binds a multipart form request and runs validation. Binding
// failures come back as a single client-readable message.
func BindForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return apierrors.NewValidationError(bindingMessage(err))
	}
	return validateDomain(req)
}

// BindQuery binds query parameters and runs validation.
func BindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return apierrors.NewValidationError(bindingMessage(err))
	}
	return validateDomain(req)
}

func validateDomain(req interface{}) error {
	v, ok := req.(Validator)
	if !ok {
		return nil
	}
	return v.Validate()
}

// bindingMessage flattens the first field error into one sentence. One
// precise complaint reads better in the error body than a field map.
func bindingMessage(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return "Invalid request"
	}

	fieldErr := validationErrs[0]
	field := strings.ToLower(fieldErr.Field())

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("Invalid request: %s is required", field)
	case "min":
		return fmt.Sprintf("Invalid request: %s must be at least %s", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("Invalid request: %s must be at most %s", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("Invalid request: %s must be one of [%s]", field, fieldErr.Param())
	default:
		return fmt.Sprintf("Invalid request: %s is invalid", field)
	}
}
