// Package handler contains the Echo HTTP handlers.  Handlers validate
// and decode requests, call into repositories or the parking engine,
// and map sentinel errors onto HTTP status codes.  They hold no
// business rules of their own.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-api/internal/repository"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

// currentUserID extracts the authenticated user's id from the JWT
// claims stored by the auth middleware.  Numeric claims arrive as
// float64 after JSON decoding; string subjects are parsed as a
// fallback.
func currentUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// pageParams reads ?page and ?size with sane bounds.  Pages are
// zero-based; size defaults to 20 and is capped at 100.
func pageParams(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}
	size, _ = strconv.Atoi(c.QueryParam("size"))
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// repoErrorStatus maps the repository sentinel errors onto HTTP
// statuses.  Unrecognized errors fall through to 500.
func repoErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNoFreeSpace),
		errors.Is(err, repository.ErrSpaceNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrReceiptNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrCodeExists),
		errors.Is(err, repository.ErrCPFExists),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrDuplicateReceipt),
		errors.Is(err, repository.ErrSessionClosed),
		errors.Is(err, repository.ErrSpaceNotOccupied):
		return http.StatusConflict
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// jsonError writes the uniform error envelope.
func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}
