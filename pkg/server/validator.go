package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type echoValidator func(i any) error

// Validate reports every failed field as "Field: tag=param" in one 400 error.
func (v echoValidator) Validate(i any) error {
	err := v(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if p := fe.Param(); len(p) > 0 {
			rule += "=" + p
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid "+strings.Join(msgs, ", "))
}
