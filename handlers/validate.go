package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the request body into dst and validates it.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Errorf(apperr.KindInvalidRequest, "handler.parseBody", "Invalid request body")
	}
	return validateStruct(dst)
}

// parseDataField decodes the JSON carried in a multipart "data" field.
// A request without one falls back to a JSON body.
func parseDataField(c *fiber.Ctx, dst any, required bool) error {
	const op = "handler.parseDataField"

	raw := c.FormValue("data")
	switch {
	case raw != "":
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return apperr.Errorf(apperr.KindInvalidRequest, op, "Invalid JSON data in form-data")
		}
	case strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON):
		if err := json.Unmarshal(c.Body(), dst); err != nil {
			return apperr.Errorf(apperr.KindInvalidRequest, op, "Invalid request body")
		}
	case required:
		return apperr.Errorf(apperr.KindInvalidRequest, op, "data field is required")
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.E(apperr.KindInvalidRequest, "handler.validate", err)
	}
	return apperr.E(apperr.KindInvalidRequest, "handler.validate", errors.New(describe(verrs[0])))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
