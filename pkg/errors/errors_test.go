package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	meta := MetadataFor(CodeValidation)
	if meta.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation, got %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("validation errors should surface details")
	}

	meta = MetadataFor(CodeCollectionMissing)
	if meta.HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for missing collection, got %d", meta.HTTPStatus)
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "tier fetch")
	if err.Unwrap() != cause {
		t.Fatal("expected cause to be preserved")
	}
	if got := err.Error(); got != "DEPENDENCY_ERROR: tier fetch" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestWrapStepRecordsStepDetail(t *testing.T) {
	err := WrapStep(CodeDependency, fmt.Errorf("down"), "item insert")
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", err.Details())
	}
	if details["step"] != "item insert" {
		t.Fatalf("expected step detail, got %v", details)
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodePartialFailure, "order created but items missing")
	wrapped := fmt.Errorf("handler: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodePartialFailure {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !IsCode(wrapped, CodePartialFailure) {
		t.Fatal("IsCode should match through wrapping")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, fmt.Errorf("inner"), "outer")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(dump.Chain))
	}
}
