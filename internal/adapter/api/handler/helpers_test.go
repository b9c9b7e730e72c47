package handler

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api"
)

const echoHeaderContentType = echo.HeaderContentType

func echoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	return e
}
