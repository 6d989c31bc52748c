package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/middleware"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/prometheus"
)

// DefaultPageSize is used when a list request does not specify a limit.
const DefaultPageSize = 10

// MaxPageSize caps the page size a client may request.
const MaxPageSize = 100

// ListParams carries the pagination and search parameters shared by all
// list endpoints.
type ListParams struct {
	Search string
	Offset int
	Limit  int
}

// listParams parses ?search=, ?offset= and ?limit= with the documented
// defaults.
func listParams(c echo.Context) ListParams {
	params := ListParams{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Limit:  DefaultPageSize,
	}

	if v := c.QueryParam("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			if limit > MaxPageSize {
				limit = MaxPageSize
			}
			params.Limit = limit
		}
	}

	if v := c.QueryParam("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	return params
}

// applySearch adds a case-insensitive partial match over the given
// columns, OR-combined, when a search term is present.
func applySearch(q *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return q
	}

	pattern := "%" + search + "%"
	cond := ""
	args := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		if i > 0 {
			cond += " OR "
		}
		cond += col + " ILIKE ?"
		args = append(args, pattern)
	}
	return q.Where(cond, args...)
}

// requireCaller fetches the resolved caller context set by the auth
// middleware.
func requireCaller(c echo.Context) (*policy.CallerContext, error) {
	caller := middleware.Caller(c)
	if caller == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	return caller, nil
}

// fail translates a domain error into the JSON error envelope.
func fail(c echo.Context, err error) error {
	code, msg := apperr.Status(err)
	prometheus.RecordError(errType(code))
	return c.JSON(code, echo.Map{"error": msg})
}

func errType(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "not_authenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	default:
		return "internal"
	}
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return uint(id), nil
}
