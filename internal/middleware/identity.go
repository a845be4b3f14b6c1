package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/service"
)

// currentUserID returns the authenticated user's id as a string, or "anon".
func currentUserID(c echo.Context) string {
	if p, ok := service.PrincipalFrom(c.Request().Context()); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "anon"
}
