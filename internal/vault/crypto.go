package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize     = 16
	keySize      = 32
	pbkdf2Rounds = 100_000
)

// ErrDecryption is returned when an envelope cannot be decrypted. A wrong
// master password and a corrupt envelope are deliberately indistinguishable.
var ErrDecryption = errors.New("vault: decryption failed")

// Envelope is the stored form of an encrypted secret.
type Envelope struct {
	EncryptedData string    `json:"encrypted_data"`
	Salt          string    `json:"salt"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeriveKey stretches a master password into a 32-byte symmetric key using
// PBKDF2-HMAC-SHA256 with 100,000 iterations.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Rounds, keySize, sha256.New)
}

// Encrypt seals plaintext under a key derived from the master password. Each
// call draws a fresh random salt, so identical plaintexts produce unrelated
// envelopes. AES-GCM authenticates the ciphertext; tampering surfaces as
// ErrDecryption when opening.
func Encrypt(plaintext, password string) (Envelope, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, fmt.Errorf("generate salt: %w", err)
	}

	aead, err := newAEAD(password, salt)
	if err != nil {
		return Envelope{}, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Envelope{
		EncryptedData: base64.StdEncoding.EncodeToString(sealed),
		Salt:          base64.StdEncoding.EncodeToString(salt),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Decrypt opens an envelope with the master password. Any failure, from a
// wrong password to a truncated payload, returns ErrDecryption.
func Decrypt(envelope Envelope, password string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil || len(salt) != saltSize {
		return "", ErrDecryption
	}
	sealed, err := base64.StdEncoding.DecodeString(envelope.EncryptedData)
	if err != nil {
		return "", ErrDecryption
	}

	aead, err := newAEAD(password, salt)
	if err != nil {
		return "", ErrDecryption
	}
	if len(sealed) < aead.NonceSize() {
		return "", ErrDecryption
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}

func newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
