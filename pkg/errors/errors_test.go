package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code          Code
		status        int
		publicMsg     string
		retryable     bool
		detailsOK     bool
		informational bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeInvalidCredentials, status: http.StatusUnauthorized, publicMsg: "invalid credentials"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeOutOfStock, status: http.StatusConflict, publicMsg: "product out of stock"},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeAlreadyInCart, status: http.StatusConflict, publicMsg: "product already in cart", informational: true},
		{code: CodeEmptyCart, status: http.StatusUnprocessableEntity, publicMsg: "cart is empty"},
		{code: CodePersistenceWriteFailed, status: http.StatusServiceUnavailable, publicMsg: "state could not be persisted", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.Informational != tt.informational {
			t.Fatalf("code %s expected informational %v got %v", tt.code, tt.informational, meta.Informational)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing title")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing title" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "title"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if got := wrapped.Error(); got != "CONFLICT: ctx: boom" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if !HasCode(err, CodeForbidden) {
		t.Fatalf("HasCode should find wrapped code")
	}
	if HasCode(stdErrors.New("plain"), CodeForbidden) {
		t.Fatalf("HasCode should ignore untyped errors")
	}
}

func TestIsInformational(t *testing.T) {
	if !IsInformational(New(CodeAlreadyInCart, "dup")) {
		t.Fatal("already-in-cart should be informational")
	}
	if IsInformational(New(CodeOutOfStock, "none left")) {
		t.Fatal("out-of-stock should block")
	}
	if IsInformational(nil) {
		t.Fatal("nil error is not informational")
	}
}

func TestDumpCapturesChainAndPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "kv_entries_pkey", TableName: "kv_entries", Message: "duplicate key value"}
	err := Wrap(CodePersistenceWriteFailed, pgErr, "persist products")

	dump := Dump(err)
	if dump.Code != CodePersistenceWriteFailed {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if !dump.Retryable {
		t.Fatal("persistence failures should be retryable")
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "kv_entries_pkey" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if _, ok := dump.Fields()["pg_code"]; !ok {
		t.Fatal("expected pg_code in fields")
	}
}

func TestDumpCapturesLibPQErrors(t *testing.T) {
	err := Wrap(CodeDependency, &pq.Error{Code: "57P01", Table: "kv_entries", Message: "terminating connection"}, "load state")

	dump := Dump(err)
	if dump.PGCode != "57P01" || dump.PGTable != "kv_entries" {
		t.Fatalf("unexpected pq fields %+v", dump)
	}
}

func TestDumpNil(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || dump.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", dump)
	}
}
