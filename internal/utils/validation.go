package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FormatValidationError formats gin binding errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s failed on %s=%s", e.Field(), e.Tag(), e.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed on %s", e.Field(), e.Tag()))
		}
	}
	return strings.Join(messages, ", ")
}

// BindAndValidate binds the JSON body to obj, running its binding tags.
// If binding fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
	} else {
		BadRequest(c, "Invalid request payload: "+err.Error())
	}
	return false
}

// BindJSON decodes the JSON body into obj without running binding tags,
// for payloads whose constraints are checked further down.
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}
