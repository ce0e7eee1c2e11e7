package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the domain validation tags on gin's
// binding engine. Call once at startup.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("report_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "pending", "under_review", "verified_scam", "false_report", "resolved":
			return true
		}
		return false
	})

	_ = v.RegisterValidation("vote_type", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "upvote", "downvote":
			return true
		}
		return false
	})
}
