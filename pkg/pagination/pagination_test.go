package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(newContext("/"))

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(newContext("/?limit=10&offset=30"))

	if p.Limit != 10 {
		t.Errorf("expected limit 10, got %d", p.Limit)
	}
	if p.Offset != 30 {
		t.Errorf("expected offset 30, got %d", p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := FromContext(newContext("/?limit=100000"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := FromContext(newContext("/?offset=-5"))
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_Garbage(t *testing.T) {
	p := FromContext(newContext("/?limit=abc&offset=xyz"))
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults for garbage input, got %+v", p)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a", "b"}, 10, 2, 0)
	if resp.Total != 10 || resp.Limit != 2 || resp.Offset != 0 {
		t.Errorf("unexpected response %+v", resp)
	}
	if !resp.HasMore {
		t.Error("expected HasMore on the first of several pages")
	}

	resp = NewResponse([]string{"i", "j"}, 10, 2, 8)
	if resp.HasMore {
		t.Error("expected no more rows on the last page")
	}
}

func TestNewResponse_ShortPage(t *testing.T) {
	// A limit larger than what is left must not report more rows.
	resp := NewResponse([]int{1, 2, 3}, 3, 50, 0)
	if resp.HasMore {
		t.Error("expected HasMore false when every row is returned")
	}
}

func TestNewResponse_NilDataEncodesAsEmptyList(t *testing.T) {
	var none []*struct{ ID int }
	b, err := json.Marshal(NewResponse(none, 0, DefaultLimit, 0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"data":[]`) {
		t.Errorf("expected empty data list, got %s", b)
	}
}
