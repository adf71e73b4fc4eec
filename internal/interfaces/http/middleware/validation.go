package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// codePattern accepts till, product and scheme codes such as P01, SAV-01
// or INTER_BRANCH
var codePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var setupOnce sync.Once

// SetupValidator configures gin's validator once per process:
//   - errors name the JSON (or form) field rather than the Go field
//   - decimal amounts compare as numbers under gt, gte and friends
//   - the "code" tag checks custody identifiers against codePattern
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("code", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		})
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// FormatValidationErrors turns a bind error into the error envelope. Field
// errors become VALIDATION_ERROR details; anything else is INVALID_JSON.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Request body is not valid JSON: "+err.Error(), requestID)
	}
	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 for a failed bind
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

var validationMessages = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "This field is required" },
	"uuid":     func(validator.FieldError) string { return "Invalid UUID format" },
	"datetime": func(validator.FieldError) string { return "Must be a date formatted as YYYY-MM-DD" },
	"code": func(validator.FieldError) string {
		return "Must contain only letters, digits, '-' or '_'"
	},
	"oneof": func(fe validator.FieldError) string { return "Must be one of: " + fe.Param() },
	"gt":    func(fe validator.FieldError) string { return "Must be greater than " + fe.Param() },
	"gte":   func(fe validator.FieldError) string { return "Must be greater than or equal to " + fe.Param() },
	"lte":   func(fe validator.FieldError) string { return "Must be less than or equal to " + fe.Param() },
	"min":   func(fe validator.FieldError) string { return "Must be at least " + fe.Param() },
	"max": func(fe validator.FieldError) string {
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	},
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := validationMessages[fe.Tag()]; ok {
		return msg(fe)
	}
	return "Invalid value"
}
