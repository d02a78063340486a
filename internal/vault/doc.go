// Package vault stores per-user credentials encrypted under a master
// password, plus the one-time access codes that gate vault access.
//
// Secrets are sealed with AES-256-GCM under a key derived from the master
// password via PBKDF2. The master password is never stored; without it the
// vault can only render masked placeholders. Access codes are stored as
// SHA-256 hashes with an attempt counter; three wrong attempts on a global
// code wipe the user's vault, and the wipe is transactional with marking the
// code consumed so it cannot fire twice.
//
// The vault keeps its own SQLite database (vault.db), isolated from the
// content store.
package vault
