package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/service"
)

func invalid(field, message string) error {
	return &service.ValidationError{FieldErrors: map[string]string{field: message}}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, invalid("id", "must be a positive integer")
	}
	return id, nil
}

// bind decodes the request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return invalid("body", "invalid JSON body")
	}
	return nil
}
