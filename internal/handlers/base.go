// Package handlers exposes the HTTP API over the CRM gateway.
package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/appcontext"
)

// RequireParam returns a non-empty path parameter. CRM identifiers are
// opaque strings, not UUIDs.
func RequireParam(c echo.Context, param string) (string, error) {
	value := c.Param(param)
	if value == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}
	return value, nil
}

// RequireUserID extracts the user ID from context; preference endpoints need
// one to scope their keys.
func RequireUserID(c echo.Context) (string, error) {
	userID := appcontext.GetUserID(c.Request().Context())
	if userID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return userID, nil
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

// Unauthorized returns a 401 Unauthorized error
func Unauthorized(message string) error {
	return httperror.NewHTTPError(http.StatusUnauthorized, message)
}
