package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the secret types the vault can hold.
type Kind string

const (
	KindPassword Kind = "password"
	KindCard     Kind = "card"
)

const passwordMask = "****"

// Secret is one decrypted (or masked) vault entry.
type Secret struct {
	ID        string
	UserID    string
	Name      string
	Kind      Kind
	Value     string
	Masked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveSecret upserts one entry per (user, name). Saving under an existing
// name overwrites the previous payload; there is no versioning.
func (s *Store) SaveSecret(ctx context.Context, user, name string, kind Kind, payload, masterPassword string) error {
	if user == "" {
		return errors.New("user must not be empty")
	}
	if name == "" {
		return errors.New("secret name must not be empty")
	}
	if kind != KindPassword && kind != KindCard {
		return fmt.Errorf("unknown secret kind %q", kind)
	}

	envelope, err := Encrypt(payload, masterPassword)
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	var masked any
	if kind == KindCard {
		masked = maskCardNumber(payload)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO vault_secrets (id, user_id, name, kind, encrypted_data, salt, masked_number, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (user_id, name) DO UPDATE SET
             kind = excluded.kind,
             encrypted_data = excluded.encrypted_data,
             salt = excluded.salt,
             masked_number = excluded.masked_number,
             updated_at = excluded.updated_at`,
		uuid.NewString(),
		user,
		name,
		string(kind),
		envelope.EncryptedData,
		envelope.Salt,
		masked,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save secret: %w", err)
	}
	return nil
}

// Secrets lists a user's entries. With a master password each entry is
// decrypted individually; an entry that fails to decrypt degrades to its
// masked form instead of failing the whole call. Without a master password
// every entry is masked.
func (s *Store) Secrets(ctx context.Context, user, masterPassword string) ([]Secret, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, name, kind, encrypted_data, salt, masked_number, created_at, updated_at
         FROM vault_secrets WHERE user_id = ? ORDER BY name`,
		user,
	)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	var secrets []Secret
	for rows.Next() {
		var (
			secret     Secret
			kindStr    string
			encrypted  string
			salt       string
			maskedCard sql.NullString
			createdRaw string
			updatedRaw string
		)
		if err := rows.Scan(&secret.ID, &secret.UserID, &secret.Name, &kindStr, &encrypted, &salt, &maskedCard, &createdRaw, &updatedRaw); err != nil {
			return nil, err
		}
		secret.Kind = Kind(kindStr)
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			secret.CreatedAt = created
		}
		if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
			secret.UpdatedAt = updated
		}

		secret.Value = maskedValue(secret.Kind, maskedCard.String)
		secret.Masked = true
		if masterPassword != "" {
			envelope := Envelope{EncryptedData: encrypted, Salt: salt}
			if plaintext, err := Decrypt(envelope, masterPassword); err == nil {
				secret.Value = plaintext
				secret.Masked = false
			}
		}
		secrets = append(secrets, secret)
	}
	return secrets, rows.Err()
}

// DeleteSecret removes one entry. Reports false when the entry is absent.
func (s *Store) DeleteSecret(ctx context.Context, user, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vault_secrets WHERE user_id = ? AND name = ?`, user, name)
	if err != nil {
		return false, fmt.Errorf("delete secret: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// WipeCounts reports what WipeUser removed.
type WipeCounts struct {
	Passwords   int
	Cards       int
	AccessCodes int
}

// WipeUser deletes every secret and access code belonging to a user in one
// transaction. The counts feed the brute-force notification.
func (s *Store) WipeUser(ctx context.Context, user string) (WipeCounts, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WipeCounts{}, fmt.Errorf("begin wipe tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	counts, err := wipeUserTx(ctx, tx, user)
	if err != nil {
		return WipeCounts{}, err
	}
	if err := tx.Commit(); err != nil {
		return WipeCounts{}, fmt.Errorf("commit wipe: %w", err)
	}
	return counts, nil
}

func wipeUserTx(ctx context.Context, tx *sql.Tx, user string) (WipeCounts, error) {
	var counts WipeCounts
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM vault_secrets WHERE user_id = ? AND kind = ?`, user, string(KindPassword),
	).Scan(&counts.Passwords); err != nil {
		return WipeCounts{}, fmt.Errorf("count passwords: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM vault_secrets WHERE user_id = ? AND kind = ?`, user, string(KindCard),
	).Scan(&counts.Cards); err != nil {
		return WipeCounts{}, fmt.Errorf("count cards: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM access_codes WHERE user_id = ?`, user,
	).Scan(&counts.AccessCodes); err != nil {
		return WipeCounts{}, fmt.Errorf("count access codes: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM vault_secrets WHERE user_id = ?`, user); err != nil {
		return WipeCounts{}, fmt.Errorf("wipe secrets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM access_codes WHERE user_id = ?`, user); err != nil {
		return WipeCounts{}, fmt.Errorf("wipe access codes: %w", err)
	}
	return counts, nil
}

func maskedValue(kind Kind, maskedCard string) string {
	if kind == KindCard && maskedCard != "" {
		return maskedCard
	}
	return passwordMask
}

// maskCardNumber keeps only the last four digits of a card number for
// display without a master password.
func maskCardNumber(payload string) string {
	var digits []rune
	for _, r := range payload {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return passwordMask
	}
	return "**** **** **** " + string(digits[len(digits)-4:])
}
