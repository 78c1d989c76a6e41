package httpx

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Pattern = regexp.MustCompile(`^\d{13}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("isbn", validateISBN)
	return v
}

func validateISBN(fl validator.FieldLevel) bool {
	isbn := fl.Field().String()
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")

	switch len(isbn) {
	case 10:
		return isbn10Pattern.MatchString(isbn)
	case 13:
		return isbn13Pattern.MatchString(isbn)
	}
	return false
}

// ValidateStruct runs the struct's validate tags and returns one detail per
// failing field, ready for JSONError.
func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	var details []ErrorDetail
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, param)
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", field, param)
		case "gtefield":
			message = fmt.Sprintf("%s must not be before %s", field, param)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, param)
		case "isbn":
			message = fmt.Sprintf("%s must be a valid ISBN (10 or 13 digits)", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		details = append(details, ErrorDetail{
			Field:   field,
			Message: message,
		})
	}
	return details
}
