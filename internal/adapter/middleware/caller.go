package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

const (
	HeaderCaller = "Ax-Caller-Address"
	callerKey    = "caller"
)

// Caller requires a well-formed, non-zero Ax-Caller-Address on every
// request it wraps and stores it on the echo context.
func Caller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			addr, err := parseCaller(c.Request().Header.Get(HeaderCaller))
			if err != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err})
			}
			c.Set(callerKey, addr)
			return next(c)
		}
	}
}

// CallerFrom returns the address stored by Caller.
func CallerFrom(c echo.Context) (common.Address, bool) {
	a, ok := c.Get(callerKey).(common.Address)
	return a, ok
}
