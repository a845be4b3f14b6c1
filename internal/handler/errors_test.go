package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/service"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{invalid("title", "required"), http.StatusBadRequest, "validation"},
		{service.ErrIncompleteProfile, http.StatusBadRequest, "incomplete_profile"},
		{service.ErrExpiredToken, http.StatusBadRequest, "expired_token"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{fmt.Errorf("wrapped: %w", service.ErrForbidden), http.StatusForbidden, "forbidden"},
		{service.ErrNotFound, http.StatusNotFound, "not_found"},
		{service.ErrDuplicateRegistration, http.StatusConflict, "duplicate_registration"},
		{service.ErrPaymentSetupRequired, http.StatusUnprocessableEntity, "payment_setup_required"},
		{errors.New("db is down"), http.StatusInternalServerError, "internal"},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if err := respondError(c, tc.err); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tc.code {
				t.Fatalf("code = %q, want %q", body.Error, tc.code)
			}
			if tc.code == "internal" && body.Message != "internal server error" {
				t.Fatalf("internal detail leaked: %q", body.Message)
			}
			if tc.code == "validation" && body.Fields["title"] == "" {
				t.Fatalf("fields = %v", body.Fields)
			}
		})
	}
}
