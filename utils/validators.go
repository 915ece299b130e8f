package utils

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidateSessionIDRule checks the client-composed session ID shape:
// "<visitorId>-<epochMs>" with a non-empty visitor prefix and an all-digit
// creation timestamp suffix.
func ValidateSessionIDRule(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	i := strings.LastIndex(id, "-")
	if i <= 0 || i == len(id)-1 {
		return false
	}
	for _, r := range id[i+1:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// InitValidator registers custom rules on gin's binding engine.
func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("sessionid", ValidateSessionIDRule)
	}
}
