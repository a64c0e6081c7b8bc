package httpservice

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yourorg/pdf2json/pkg/errors"
)

var validate = validator.New()

// BindQuery binds query parameters into req and validates its struct tags.
func BindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errors.NewValidationError("Invalid query parameters").WithDetails(err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return errors.NewValidationError("Invalid query parameters").WithDetails(err.Error())
	}
	return nil
}
