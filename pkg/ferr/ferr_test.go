package ferr

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(CodeUpstream, "store unavailable", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCodeOfFollowsWrapChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("signup: %w", Wrap(CodeUpstream, "store unavailable", cause))

	if got := CodeOf(err); got != CodeUpstream {
		t.Fatalf("CodeOf = %q, want %q", got, CodeUpstream)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable with errors.Is")
	}
	if got := MessageOf(err, "fallback"); got != "store unavailable" {
		t.Errorf("MessageOf = %q", got)
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeConflict, "Email already registered")

	if !IsCode(err, CodeConflict) {
		t.Error("expected conflict code")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("did not expect not_found code")
	}
	if IsCode(nil, CodeConflict) {
		t.Error("nil error must not match any code")
	}
	if CodeOf(errors.New("plain")) != CodeUnknown {
		t.Error("plain errors should map to unknown")
	}
	if got := MessageOf(errors.New("plain"), "fallback"); got != "fallback" {
		t.Errorf("MessageOf plain = %q", got)
	}
}
