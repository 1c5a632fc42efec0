package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func parseFrom(t *testing.T, rawQuery string) FilterParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return ParseQueryParams(c)
}

func TestParseQueryParamsDefaults(t *testing.T) {
	params := parseFrom(t, "")
	if params.Page != 1 || params.Limit != 10 {
		t.Errorf("expected page=1 limit=10, got page=%d limit=%d", params.Page, params.Limit)
	}
	if params.Sort.Field != "created_at" || params.Sort.Order != "desc" {
		t.Errorf("expected created_at desc default, got %+v", params.Sort)
	}
}

func TestParseQueryParamsFiltersAndSort(t *testing.T) {
	params := parseFrom(t, "page=3&limit=25&filters[event_type]=device_mismatch&sort[field]=event_type&sort[order]=asc")
	if params.Page != 3 || params.Limit != 25 {
		t.Errorf("got page=%d limit=%d", params.Page, params.Limit)
	}
	if params.Filters["event_type"] != "device_mismatch" {
		t.Errorf("filter not parsed: %+v", params.Filters)
	}
	if params.Sort.Field != "event_type" || params.Sort.Order != "asc" {
		t.Errorf("sort not parsed: %+v", params.Sort)
	}
}

func TestParseQueryParamsClampsBounds(t *testing.T) {
	params := parseFrom(t, "page=0&limit=9999")
	if params.Page != 1 {
		t.Errorf("page not clamped: %d", params.Page)
	}
	if params.Limit != 100 {
		t.Errorf("limit not clamped: %d", params.Limit)
	}
}

func TestBuildPaginationResponse(t *testing.T) {
	resp := BuildPaginationResponse(2, 10, 25)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.TotalPages)
	}
	if !resp.HasNext || !resp.HasPrev {
		t.Errorf("expected has_next and has_prev on middle page: %+v", resp)
	}

	resp = BuildPaginationResponse(1, 10, 0)
	if resp.TotalPages != 0 || resp.HasNext || resp.HasPrev {
		t.Errorf("empty result pagination wrong: %+v", resp)
	}
}
