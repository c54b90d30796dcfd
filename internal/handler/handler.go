package handler

import (
	"errors"
	"reflect"
	"strings"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/dto"
	"marketplace-api/internal/fallback"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// HeaderDataTier tells the client which tier answered.
const HeaderDataTier = "X-Data-Tier"

// CustomValidator plugs go-playground/validator into echo's c.Validate.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i any) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &apperror.ValidationError{Field: fe.Namespace(), Message: "failed on '" + fe.Tag() + "'"}
	}
	return &apperror.ValidationError{Message: err.Error()}
}

// bindAndValidate binds the request body and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return httpError(err)
	}
	return nil
}

func httpError(err error) *echo.HTTPError {
	body := dto.ErrorResponse{Error: err.Error()}

	var failed *fallback.FailedError
	if errors.As(err, &failed) {
		body.Tier = string(failed.Tier)
	}

	return echo.NewHTTPError(apperror.HTTPStatus(err), body).SetInternal(err)
}

func respond[T any](c echo.Context, status int, res fallback.Result[T], err error) error {
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(HeaderDataTier, string(res.Tier))
	return c.JSON(status, res.Data)
}
