package validation

import (
	"reflect"
	"strings"
	"sync"

	"finance-reporting/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the reporting rules registered
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a validator with the closed reporting enums registered as tags
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("transaction_category", validateCategory)
	_ = v.RegisterValidation("transaction_status", validateStatus)
	_ = v.RegisterValidation("sort_field", validateSortField)
	_ = v.RegisterValidation("sort_order", validateSortOrder)
	_ = v.RegisterValidation("export_column", validateExportColumn)
	_ = v.RegisterValidation("username", validateUsername)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Var reports whether a single value satisfies the tag
func (v *Validator) Var(value interface{}, tag string) bool {
	return v.validate.Var(value, tag) == nil
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

func validateStatus(fl validator.FieldLevel) bool {
	return models.IsValidStatus(fl.Field().String())
}

func validateSortField(fl validator.FieldLevel) bool {
	return models.IsValidSortField(fl.Field().String())
}

func validateSortOrder(fl validator.FieldLevel) bool {
	return models.IsValidSortOrder(fl.Field().String())
}

func validateExportColumn(fl validator.FieldLevel) bool {
	return models.IsValidExportColumn(fl.Field().String())
}

// validateUsername checks length and the [A-Za-z0-9_] alphabet
func validateUsername(fl validator.FieldLevel) bool {
	return models.ValidateUsername(fl.Field().String()) == nil
}
