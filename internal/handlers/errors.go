package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"hardwarestore/internal/common"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

// ErrorHandler renders every failure as {"error":{"code","message","details"}}.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(err)
		if status >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error(c.Request().Context(), "failed to write error response", err)
		}
	}
}

func renderError(err error) (int, *common.ErrorResponse) {
	if typed := common.AsError(err); typed != nil {
		return common.HTTPStatus(typed.Code), common.CreateErrorResponse(string(typed.Code), typed.Message, typed.Details)
	}

	if be, ok := database.AsBackendError(err); ok {
		details := map[string]string{"backend": string(be.Backend)}
		if be.Code != "" {
			details["code"] = be.Code
		}
		return http.StatusInternalServerError,
			common.CreateErrorResponse(string(common.CodeBackend), "database operation failed", details)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, common.CreateErrorResponse(string(codeForStatus(he.Code)), fmt.Sprint(he.Message), nil)
	}

	return http.StatusInternalServerError,
		common.CreateErrorResponse(string(common.CodeInternal), "internal server error", nil)
}

func codeForStatus(status int) common.Code {
	switch status {
	case http.StatusUnauthorized:
		return common.CodeUnauthorized
	case http.StatusForbidden:
		return common.CodeForbidden
	case http.StatusNotFound:
		return common.CodeNotFound
	case http.StatusTooManyRequests:
		return common.CodeRateLimit
	}
	if status >= http.StatusInternalServerError {
		return common.CodeInternal
	}
	return common.CodeValidation
}

// RequestValidator adapts go-playground/validator to echo. Field names in the
// reported details follow the json tags.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.WrapError(common.CodeValidation, err, "validation failed")
	}
	out := common.NewError(common.CodeValidation, "validation failed")
	for _, fe := range fieldErrs {
		out.WithDetail(fe.Field(), describeFieldError(fe))
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// bind decodes the request into req and runs the registered validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return common.ValidationError("body", "invalid request body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

func pathID(c echo.Context) (int64, error) {
	return common.ParseID(c.Param("id"), "id")
}
