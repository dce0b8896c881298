package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON binds and validates the request body. On failure it writes a 422
// with field-level messages and returns false.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validationErrors(err)})
		return false
	}
	return true
}

// failField writes a 422 for a single post-binding rule, e.g. a uniqueness
// violation.
func failField(c *gin.Context, field, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{field: []string{message}}})
}

func validationErrors(err error) map[string][]string {
	out := make(map[string][]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out["body"] = []string{"The request body is invalid."}
		return out
	}

	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		out[field] = append(out[field], fieldMessage(field, fe))
	}
	return out
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
