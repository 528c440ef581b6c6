// Package validator wraps go-playground/validator with the custom rules the
// request and model structs in this service use alongside the standard tags:
//
//   - uuid_required: a uuid.UUID field must not be the nil UUID. "required"
//     alone cannot tell a missing foreign key from the zero value.
//   - money_gt0: a decimal.Decimal field must be strictly positive. The
//     numeric gt=0 tag does not understand decimal columns.
package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrorResponse describes one failed field of a validated struct.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})
	validate.RegisterValidation("money_gt0", func(fl validator.FieldLevel) bool {
		amount, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && amount.IsPositive()
	})
}

// ValidateStruct runs the registered rules over data and returns one entry
// per failed field, nil when everything passes.
func ValidateStruct(data interface{}) []*ErrorResponse {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var errors []*ErrorResponse
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errors = append(errors, &ErrorResponse{
			FailedField: fieldErr.StructNamespace(),
			Tag:         fieldErr.Tag(),
			Value:       fieldErr.Param(),
		})
	}
	return errors
}
