package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeQuantityLimit, status: http.StatusBadRequest, publicMsg: "quantity limit reached", detailsOK: true},
		{code: CodeCartNotReady, status: http.StatusConflict, publicMsg: "cart is not loaded yet", retryable: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many requests", retryable: true},
		{code: CodeSyncFailed, status: http.StatusBadGateway, publicMsg: "cart could not be saved", retryable: true, detailsOK: true},
		{code: CodePricingFailed, status: http.StatusBadGateway, publicMsg: "totals could not be recalculated", retryable: true, detailsOK: true},
		{code: CodeLoadFailed, status: http.StatusBadGateway, publicMsg: "cart could not be loaded", retryable: true},
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
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
	if Known("SOMETHING_UNKNOWN") {
		t.Fatalf("unknown code reported as known")
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeSyncFailed, cause, "upsert item")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "SYNC_FAILED: upsert item: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestIsCodeWalksNestedTypedErrors(t *testing.T) {
	inner := New(CodeNotFound, "product missing")
	outer := Wrap(CodeSyncFailed, fmt.Errorf("call: %w", inner), "upsert item")

	if CodeOf(outer) != CodeSyncFailed {
		t.Fatalf("expected outer code, got %s", CodeOf(outer))
	}
	if !IsCode(outer, CodeSyncFailed) {
		t.Fatalf("expected outer code to match")
	}
	if !IsCode(outer, CodeNotFound) {
		t.Fatalf("expected nested code to match through fmt wrapping")
	}
	if IsCode(outer, CodeConflict) {
		t.Fatalf("unexpected match for absent code")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors should map to internal")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpIncludesPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key", TableName: "products"}
	dump := Dump(Wrap(CodeDependency, pgErr, "insert product"))

	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGTable != "products" {
		t.Fatalf("unexpected pg details %+v", dump)
	}
	fields := dump.Fields()
	if fields["pg_constraint"] != "products_slug_key" {
		t.Fatalf("expected constraint field, got %v", fields)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
}
