package vault_test

import (
	"context"
	"testing"

	"quill/internal/vault"
)

func TestVerifyCodeSuccessIsSingleUse(t *testing.T) {
	store := mustOpenVault(t)
	ctx := context.Background()

	code, err := store.IssueCode(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueCode failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	result, err := store.VerifyCode(ctx, "user-1", vault.GlobalScope, code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if !result.Success || result.Outcome != vault.OutcomeSuccess {
		t.Fatalf("expected success, got %#v", result)
	}

	result, err = store.VerifyCode(ctx, "user-1", vault.GlobalScope, code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Success || result.Outcome != vault.OutcomeUsedCode {
		t.Fatalf("expected used_code on replay, got %#v", result)
	}
}

func TestVerifyCodeNoCode(t *testing.T) {
	store := mustOpenVault(t)

	result, err := store.VerifyCode(context.Background(), "user-1", vault.GlobalScope, "123456")
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Outcome != vault.OutcomeNoCode {
		t.Fatalf("expected no_code, got %#v", result)
	}
}

func TestVerifyCodeWrongCodeCountsDown(t *testing.T) {
	store := mustOpenVault(t)
	ctx := context.Background()

	code, err := store.IssueCode(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueCode failed: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	result, err := store.VerifyCode(ctx, "user-1", vault.GlobalScope, wrong)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Outcome != vault.OutcomeWrongCode || result.RemainingAttempts != 2 {
		t.Fatalf("expected wrong_code with 2 remaining, got %#v", result)
	}

	result, err = store.VerifyCode(ctx, "user-1", vault.GlobalScope, wrong)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Outcome != vault.OutcomeWrongCode || result.RemainingAttempts != 1 {
		t.Fatalf("expected wrong_code with 1 remaining, got %#v", result)
	}

	// the correct code still works before attempts run out
	result, err = store.VerifyCode(ctx, "user-1", vault.GlobalScope, code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success before exhaustion, got %#v", result)
	}
}

func TestVerifyCodeExhaustionWipesGlobalScope(t *testing.T) {
	store := mustOpenVault(t)
	ctx := context.Background()

	if err := store.SaveSecret(ctx, "user-1", "email", vault.KindPassword, "hunter2", "master"); err != nil {
		t.Fatalf("SaveSecret failed: %v", err)
	}
	code, err := store.IssueCode(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueCode failed: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	var result vault.VerifyResult
	for i := 0; i < 3; i++ {
		result, err = store.VerifyCode(ctx, "user-1", vault.GlobalScope, wrong)
		if err != nil {
			t.Fatalf("VerifyCode failed: %v", err)
		}
	}
	if result.Outcome != vault.OutcomeMaxAttempts || !result.DataDeleted {
		t.Fatalf("expected max_attempts with wipe, got %#v", result)
	}
	if result.Wiped.Passwords != 1 || result.Wiped.AccessCodes != 1 {
		t.Fatalf("unexpected wipe counts: %#v", result.Wiped)
	}

	secrets, err := store.Secrets(ctx, "user-1", "master")
	if err != nil {
		t.Fatalf("Secrets failed: %v", err)
	}
	if len(secrets) != 0 {
		t.Fatalf("expected wiped vault, got %d entries", len(secrets))
	}

	// the wipe already removed the code; further attempts find nothing to wipe
	result, err = store.VerifyCode(ctx, "user-1", vault.GlobalScope, wrong)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Outcome != vault.OutcomeNoCode || result.DataDeleted {
		t.Fatalf("wipe must fire exactly once, got %#v", result)
	}
}

func TestVerifyScopedCodeExhaustionDoesNotWipe(t *testing.T) {
	store := mustOpenVault(t)
	ctx := context.Background()

	if err := store.SaveSecret(ctx, "user-1", "email", vault.KindPassword, "hunter2", "master"); err != nil {
		t.Fatalf("SaveSecret failed: %v", err)
	}
	code, err := store.IssueScopedCode(ctx, "user-1", "password-reset")
	if err != nil {
		t.Fatalf("IssueScopedCode failed: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	var result vault.VerifyResult
	for i := 0; i < 3; i++ {
		result, err = store.VerifyCode(ctx, "user-1", "password-reset", wrong)
		if err != nil {
			t.Fatalf("VerifyCode failed: %v", err)
		}
	}
	if result.Outcome != vault.OutcomeMaxAttempts || result.DataDeleted {
		t.Fatalf("scoped exhaustion must not wipe, got %#v", result)
	}

	secrets, err := store.Secrets(ctx, "user-1", "master")
	if err != nil {
		t.Fatalf("Secrets failed: %v", err)
	}
	if len(secrets) != 1 {
		t.Fatalf("expected vault untouched, got %d entries", len(secrets))
	}

	result, err = store.VerifyCode(ctx, "user-1", "password-reset", code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if result.Outcome != vault.OutcomeUsedCode {
		t.Fatalf("exhausted scoped code must read used, got %#v", result)
	}
}

func TestIssueCodeDiscardsPriorCode(t *testing.T) {
	store := mustOpenVault(t)
	ctx := context.Background()

	first, err := store.IssueCode(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueCode failed: %v", err)
	}
	second, err := store.IssueCode(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueCode failed: %v", err)
	}

	if first != second {
		result, err := store.VerifyCode(ctx, "user-1", vault.GlobalScope, first)
		if err != nil {
			t.Fatalf("VerifyCode failed: %v", err)
		}
		if result.Success {
			t.Fatal("superseded code must not verify")
		}
	}

	result, err := store.VerifyCode(ctx, "user-1", vault.GlobalScope, second)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected fresh code to verify, got %#v", result)
	}
}

func TestGlobalAndScopedCodesCoexist(t *testing.T) {
	store := mustOpenVault(t)
	ctx := context.Background()

	global, err := store.IssueCode(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueCode failed: %v", err)
	}
	scoped, err := store.IssueScopedCode(ctx, "user-1", "password-reset")
	if err != nil {
		t.Fatalf("IssueScopedCode failed: %v", err)
	}

	result, err := store.VerifyCode(ctx, "user-1", "password-reset", scoped)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("scoped code should verify, got %#v", result)
	}

	result, err = store.VerifyCode(ctx, "user-1", vault.GlobalScope, global)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("global code should be unaffected by scoped verify, got %#v", result)
	}
}
