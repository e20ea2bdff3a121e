package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ReadAndValidateRequest binds query/body into req, applies default tags and
// runs struct validation. Returns nil on success, otherwise a value suitable
// for BadRequestResponse.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) interface{} {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprintf("%v", he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

func fieldError(fe validator.FieldError) ValidationError {
	field := fe.Field()
	param := fe.Param()
	params := map[string]interface{}{}
	var msg string

	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "min", "gte":
		params["min"] = param
		if fe.Tag() == "min" && fe.Type().Kind() == reflect.String {
			msg = fmt.Sprintf("%s must be at least %s characters", field, param)
		} else {
			msg = fmt.Sprintf("%s must be at least %s", field, param)
		}
	case "max", "lte":
		params["max"] = param
		if fe.Tag() == "max" && fe.Type().Kind() == reflect.String {
			msg = fmt.Sprintf("%s must be at most %s characters", field, param)
		} else {
			msg = fmt.Sprintf("%s must be at most %s", field, param)
		}
	case "gt":
		params["value"] = param
		msg = fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		params["value"] = param
		msg = fmt.Sprintf("%s must be less than %s", field, param)
	case "oneof":
		params["options"] = strings.Split(param, " ")
		msg = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	default:
		msg = fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}

	if len(params) == 0 {
		params = nil
	}
	return ValidationError{
		Code:    "ERR_" + strings.ToUpper(fe.Tag()),
		Field:   field,
		Message: msg,
		Params:  params,
	}
}
