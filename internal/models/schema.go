package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"productapi/internal/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("wholenumber", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f) && !math.IsInf(f, 0)
	})
	return v
}

// violationMessages maps field and failed tag to the client-facing message.
var violationMessages = map[string]map[string]string{
	"name": {
		"required": "Product name is required",
		"min":      "Product name is required",
	},
	"price": {
		"required": "Product price is required",
		"gte":      "Price cannot be negative",
	},
	"quantity": {
		"gte":         "Quantity cannot be negative",
		"lte":         "Quantity is too large",
		"wholenumber": "Quantity must be a whole number",
	},
}

// ValidateProduct checks a candidate and returns the record it describes,
// with defaults applied. On failure the error is an *errs.Error of kind
// KindValidation with one violation per invalid field.
func ValidateProduct(in ProductInput) (Product, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Product{}, errs.Gateway("validate product", err)
		}
		return Product{}, errs.Validation("validate product", toViolations(verrs)...)
	}

	p := Product{
		Name:  *in.Name,
		Price: *in.Price,
	}
	if in.Quantity != nil {
		p.Quantity = int(*in.Quantity)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	return p, nil
}

func toViolations(verrs validator.ValidationErrors) []errs.FieldViolation {
	out := make([]errs.FieldViolation, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true

		msg, ok := violationMessages[field][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Field '%s' failed on the '%s' tag", field, fe.Tag())
		}
		out = append(out, errs.FieldViolation{Field: field, Message: msg})
	}
	return out
}

// PayloadError converts a JSON type mismatch on a known field into a
// validation error. It returns nil for any other decode failure.
func PayloadError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil
	}
	field := typeErr.Field
	if _, known := violationMessages[field]; !known && field != "description" {
		return nil
	}
	kind := "number"
	if field == "name" || field == "description" {
		kind = "string"
	}
	return errs.Validation("decode product", errs.FieldViolation{
		Field:   field,
		Message: fmt.Sprintf("%s must be a %s", strings.ToUpper(field[:1])+field[1:], kind),
	})
}
