package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/service"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var statusByKind = map[string]int{
	"validation":             http.StatusBadRequest,
	"incomplete_profile":     http.StatusBadRequest,
	"invalid_token":          http.StatusBadRequest,
	"expired_token":          http.StatusBadRequest,
	"token_already_used":     http.StatusBadRequest,
	"unauthorized":           http.StatusUnauthorized,
	"invalid_credentials":    http.StatusUnauthorized,
	"forbidden":              http.StatusForbidden,
	"not_found":              http.StatusNotFound,
	"conflict":               http.StatusConflict,
	"duplicate_registration": http.StatusConflict,
	"duplicate_email":        http.StatusConflict,
	"payment_setup_required": http.StatusUnprocessableEntity,
}

var messageByKind = map[string]string{
	"incomplete_profile":     "name and phone are required before registering",
	"invalid_token":          "reset token is invalid",
	"expired_token":          "reset token has expired",
	"token_already_used":     "reset token was already used",
	"unauthorized":           "authentication required",
	"invalid_credentials":    "invalid email or password",
	"forbidden":              "you are not allowed to do this",
	"not_found":              "not found",
	"conflict":               "already exists",
	"duplicate_registration": "already registered for this event",
	"duplicate_email":        "email already registered",
	"payment_setup_required": "a bank account is required for paid events",
}

// respondError writes err as JSON. Unknown errors become a generic 500; the
// service layer has already logged them with context.
func respondError(c echo.Context, err error) error {
	kind := service.ErrorKind(err)
	status, ok := statusByKind[kind]
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
	}
	body := errorBody{Error: kind, Message: messageByKind[kind]}
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		body.Message = "validation failed"
		body.Fields = vErr.FieldErrors
	}
	return c.JSON(status, body)
}
