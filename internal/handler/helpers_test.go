package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newListContext(t *testing.T, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestListParamsDefaults(t *testing.T) {
	params := listParams(newListContext(t, ""))
	if params.Limit != DefaultPageSize {
		t.Fatalf("default limit = %d, want %d", params.Limit, DefaultPageSize)
	}
	if params.Offset != 0 {
		t.Fatalf("default offset = %d, want 0", params.Offset)
	}
	if params.Search != "" {
		t.Fatalf("default search = %q, want empty", params.Search)
	}
}

func TestListParamsParsing(t *testing.T) {
	params := listParams(newListContext(t, "search=ada&limit=25&offset=50"))
	if params.Search != "ada" {
		t.Fatalf("search = %q, want %q", params.Search, "ada")
	}
	if params.Limit != 25 {
		t.Fatalf("limit = %d, want 25", params.Limit)
	}
	if params.Offset != 50 {
		t.Fatalf("offset = %d, want 50", params.Offset)
	}
}

func TestListParamsRejectsGarbage(t *testing.T) {
	params := listParams(newListContext(t, "limit=-5&offset=-1"))
	if params.Limit != DefaultPageSize {
		t.Fatalf("negative limit should fall back to default, got %d", params.Limit)
	}
	if params.Offset != 0 {
		t.Fatalf("negative offset should fall back to 0, got %d", params.Offset)
	}

	params = listParams(newListContext(t, "limit=abc&offset=xyz"))
	if params.Limit != DefaultPageSize || params.Offset != 0 {
		t.Fatalf("non-numeric params should fall back to defaults, got %+v", params)
	}
}

func TestListParamsCapsLimit(t *testing.T) {
	params := listParams(newListContext(t, "limit=5000"))
	if params.Limit != MaxPageSize {
		t.Fatalf("limit should be capped at %d, got %d", MaxPageSize, params.Limit)
	}
}

func TestListParamsTrimsSearch(t *testing.T) {
	params := listParams(newListContext(t, "search=%20%20ada%20%20"))
	if params.Search != "ada" {
		t.Fatalf("search should be trimmed, got %q", params.Search)
	}
}
