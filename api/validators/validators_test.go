package validators

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"pw"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Email != "a@b.co" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"pw","role":"admin"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","password":""}`))
	var body loginBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	if typed == nil {
		t.Fatalf("expected validation error")
	}
	details := typed.Details().(map[string]string)
	if details["email"] == "" || details["password"] == "" {
		t.Fatalf("expected email and password details, got %v", details)
	}
}

func TestParseQueryCategory(t *testing.T) {
	req := httptest.NewRequest("GET", "/?category=Home+Goods", nil)
	category, err := ParseQueryCategory(req, "category")
	if err != nil || category != enums.ProductCategoryHomeGoods {
		t.Fatalf("unexpected category %q err=%v", category, err)
	}

	req = httptest.NewRequest("GET", "/?category=all", nil)
	if category, err := ParseQueryCategory(req, "category"); err != nil || category != "" {
		t.Fatalf("expected wildcard, got %q err=%v", category, err)
	}

	req = httptest.NewRequest("GET", "/?category=Toys", nil)
	if _, err := ParseQueryCategory(req, "category"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryStringTruncates(t *testing.T) {
	req := httptest.NewRequest("GET", "/?q=+lamp+shade+", nil)
	if got := ParseQueryString(req, "q", 4); got != "lamp" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestParseQueryStringKeepsRunesWhole(t *testing.T) {
	q := strings.Repeat("a", 99) + "é"
	req := httptest.NewRequest("GET", "/?q="+url.QueryEscape(q), nil)

	got := ParseQueryString(req, "q", 100)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated value is not valid utf-8: % x", got[len(got)-4:])
	}
	if got != strings.Repeat("a", 99) {
		t.Fatalf("expected the partial rune dropped, got %d bytes", len(got))
	}

	if got := ParseQueryString(req, "q", 101); got != q {
		t.Fatalf("expected full value when it fits, got %q", got)
	}
}
