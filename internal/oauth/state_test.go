package oauth

import (
	"errors"
	"testing"
	"time"
)

func TestStateSigner_IssueVerify(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute)

	state, nonce, err := signer.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if nonce == "" {
		t.Fatalf("expected nonce")
	}
	if err := signer.Verify(state, nonce); err != nil {
		t.Fatalf("verify: %v", err)
	}

	other, otherNonce, err := signer.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if other == state || otherNonce == nonce {
		t.Fatalf("expected distinct states")
	}
}

func TestStateSigner_RejectsOtherSessionNonce(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute)
	state, _, err := signer.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, victimNonce, err := signer.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := signer.Verify(state, victimNonce); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch for foreign nonce, got %v", err)
	}
	if err := signer.Verify(state, ""); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch without session nonce, got %v", err)
	}
}

func TestStateSigner_RejectsForeignSecret(t *testing.T) {
	state, nonce, err := NewStateSigner("secret-a", time.Minute).Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := NewStateSigner("secret-b", time.Minute).Verify(state, nonce); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("expected ErrStateInvalid, got %v", err)
	}
}

func TestStateSigner_Expired(t *testing.T) {
	signer := NewStateSigner("secret", time.Minute)
	issuedAt := time.Now().UTC()
	signer.now = func() time.Time { return issuedAt }

	state, nonce, err := signer.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	signer.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if err := signer.Verify(state, nonce); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("expected ErrStateExpired, got %v", err)
	}
}

func TestStateSigner_EmptyInputs(t *testing.T) {
	if _, _, err := NewStateSigner("", time.Minute).Issue(); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("expected error for empty secret, got %v", err)
	}
	if err := NewStateSigner("secret", time.Minute).Verify("  ", "n"); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("expected error for empty state, got %v", err)
	}
	if err := NewStateSigner("secret", time.Minute).Verify("not-a-jwt", "n"); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("expected error for garbage state, got %v", err)
	}
}
