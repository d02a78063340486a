package vault

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	codeDigits      = 6
	maxCodeAttempts = 3

	globalCodeTTL = 24 * time.Hour
	scopedCodeTTL = 30 * time.Minute
)

// GlobalScope is the scope under which IssueCode stores codes. Only
// exhausting a global-scope code wipes the user's vault.
const GlobalScope = ""

// VerifyOutcome names the result of a code verification attempt.
type VerifyOutcome string

const (
	OutcomeSuccess     VerifyOutcome = "success"
	OutcomeNoCode      VerifyOutcome = "no_code"
	OutcomeUsedCode    VerifyOutcome = "used_code"
	OutcomeExpiredCode VerifyOutcome = "expired_code"
	OutcomeMaxAttempts VerifyOutcome = "max_attempts"
	OutcomeWrongCode   VerifyOutcome = "wrong_code"
)

// VerifyResult reports one verification attempt. DataDeleted is true only
// when this attempt triggered the brute-force wipe.
type VerifyResult struct {
	Success           bool
	Outcome           VerifyOutcome
	RemainingAttempts int
	DataDeleted       bool
	Wiped             WipeCounts
}

// IssueCode generates a one-time six-digit code for a user, valid for 24
// hours. Only the SHA-256 hash is stored; the plaintext code is returned
// once and never recoverable. Issuing discards any prior code for the user.
func (s *Store) IssueCode(ctx context.Context, user string) (string, error) {
	return s.issue(ctx, user, GlobalScope, globalCodeTTL)
}

// IssueScopedCode generates a short-lived code bound to a scope, valid for
// 30 minutes. Scoped codes never trigger the vault wipe on exhaustion.
func (s *Store) IssueScopedCode(ctx context.Context, user, scope string) (string, error) {
	if scope == GlobalScope {
		return "", errors.New("scope must not be empty")
	}
	return s.issue(ctx, user, scope, scopedCodeTTL)
}

func (s *Store) issue(ctx context.Context, user, scope string, ttl time.Duration) (string, error) {
	if user == "" {
		return "", errors.New("user must not be empty")
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO access_codes (user_id, scope, code_hash, attempts, used, issued_at, expires_at, verified_at)
         VALUES (?, ?, ?, 0, 0, ?, ?, NULL)
         ON CONFLICT (user_id, scope) DO UPDATE SET
             code_hash = excluded.code_hash,
             attempts = 0,
             used = 0,
             issued_at = excluded.issued_at,
             expires_at = excluded.expires_at,
             verified_at = NULL`,
		user,
		scope,
		hashCode(code),
		now.Format(time.RFC3339Nano),
		now.Add(ttl).Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("issue access code: %w", err)
	}
	return code, nil
}

// VerifyCode checks a submitted code against the stored hash for (user,
// scope). Three wrong attempts on a global-scope code wipe the user's vault;
// the wipe fires exactly once because the code is marked used in the same
// transaction that performs it.
func (s *Store) VerifyCode(ctx context.Context, user, scope, code string) (VerifyResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("begin verify tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		codeHash   string
		attempts   int
		usedInt    int
		expiresRaw string
	)
	err = tx.QueryRowContext(
		ctx,
		`SELECT code_hash, attempts, used, expires_at FROM access_codes WHERE user_id = ? AND scope = ?`,
		user,
		scope,
	).Scan(&codeHash, &attempts, &usedInt, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return VerifyResult{Outcome: OutcomeNoCode}, nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("load access code: %w", err)
	}

	if usedInt != 0 {
		return VerifyResult{Outcome: OutcomeUsedCode}, nil
	}

	now := time.Now().UTC()
	expires, err := time.Parse(time.RFC3339Nano, expiresRaw)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("parse code expiry: %w", err)
	}
	if now.After(expires) {
		if err := markCodeUsed(ctx, tx, user, scope, false); err != nil {
			return VerifyResult{}, err
		}
		if err := tx.Commit(); err != nil {
			return VerifyResult{}, fmt.Errorf("commit verify: %w", err)
		}
		return VerifyResult{Outcome: OutcomeExpiredCode}, nil
	}

	if attempts >= maxCodeAttempts {
		return s.exhaust(ctx, tx, user, scope)
	}

	if subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(codeHash)) != 1 {
		attempts++
		if attempts >= maxCodeAttempts {
			return s.exhaust(ctx, tx, user, scope)
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE access_codes SET attempts = ? WHERE user_id = ? AND scope = ?`,
			attempts,
			user,
			scope,
		); err != nil {
			return VerifyResult{}, fmt.Errorf("record failed attempt: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return VerifyResult{}, fmt.Errorf("commit verify: %w", err)
		}
		return VerifyResult{Outcome: OutcomeWrongCode, RemainingAttempts: maxCodeAttempts - attempts}, nil
	}

	if err := markCodeUsed(ctx, tx, user, scope, true); err != nil {
		return VerifyResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return VerifyResult{}, fmt.Errorf("commit verify: %w", err)
	}
	return VerifyResult{Success: true, Outcome: OutcomeSuccess}, nil
}

// exhaust marks the code used and, for global-scope codes, wipes the user's
// vault inside the same transaction.
func (s *Store) exhaust(ctx context.Context, tx *sql.Tx, user, scope string) (VerifyResult, error) {
	result := VerifyResult{Outcome: OutcomeMaxAttempts}

	if scope == GlobalScope {
		counts, err := wipeUserTx(ctx, tx, user)
		if err != nil {
			return VerifyResult{}, err
		}
		result.DataDeleted = true
		result.Wiped = counts
		// wipeUserTx removed the code row along with everything else
		if err := tx.Commit(); err != nil {
			return VerifyResult{}, fmt.Errorf("commit wipe: %w", err)
		}
		return result, nil
	}

	if err := markCodeUsed(ctx, tx, user, scope, false); err != nil {
		return VerifyResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return VerifyResult{}, fmt.Errorf("commit verify: %w", err)
	}
	return result, nil
}

func markCodeUsed(ctx context.Context, tx *sql.Tx, user, scope string, verified bool) error {
	var verifiedAt any
	if verified {
		verifiedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE access_codes SET used = 1, verified_at = ? WHERE user_id = ? AND scope = ?`,
		verifiedAt,
		user,
		scope,
	); err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}
	return nil
}

func randomCode() (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
