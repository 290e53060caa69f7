package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"barrierfree-backend/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and reports the first failing field
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperrors.Invalid(fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			return apperrors.Invalid(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "max":
			return apperrors.Invalid(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			return apperrors.Invalid(fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}

	return apperrors.Invalid(err.Error())
}
