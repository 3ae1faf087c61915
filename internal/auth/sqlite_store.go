package auth

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/hkdf"
)

// devMasterKey is used when HOTEL_MASTER_KEY is unset. Fine for a laptop,
// not for a shared deployment.
const devMasterKey = "hotel-mcp-credential-key-dev"

// SQLiteStore persists the credential pair encrypted at rest.
// The table holds at most one row, so a pair is always written and
// deleted in a single statement.
type SQLiteStore struct {
	db  *sql.DB
	gcm cipher.AEAD
}

// NewSQLiteStore opens (or creates) the credential database at dbPath.
// masterKey seeds the AES-256-GCM key through HKDF.
func NewSQLiteStore(dbPath, masterKey string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gcm, err := newCipher(masterKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}

	store := &SQLiteStore{db: db, gcm: gcm}
	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS hotel_credentials (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		token_type TEXT NOT NULL DEFAULT '',
		expires_in INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context) (Pair, error) {
	var encAccess, encRefresh string
	var p Pair

	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, token_type, expires_in FROM hotel_credentials WHERE id = 1`,
	).Scan(&encAccess, &encRefresh, &p.TokenType, &p.ExpiresIn)
	if errors.Is(err, sql.ErrNoRows) {
		return Pair{}, nil
	}
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	if p.AccessToken, err = s.decrypt(encAccess); err != nil {
		return Pair{}, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if p.RefreshToken, err = s.decrypt(encRefresh); err != nil {
		return Pair{}, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) SetPair(ctx context.Context, p Pair) error {
	if !p.Complete() {
		return ErrIncompletePair
	}

	encAccess, err := s.encrypt(p.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := s.encrypt(p.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO hotel_credentials (id, access_token, refresh_token, token_type, expires_in, updated_at)
	VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		encAccess, encRefresh, p.TokenType, p.ExpiresIn)
	if err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hotel_credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func newCipher(masterKey string) (cipher.AEAD, error) {
	if masterKey == "" {
		log.Printf("[AUTH] HOTEL_MASTER_KEY not set, using development key for credential store")
		masterKey = devMasterKey
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(masterKey), []byte("hotel-mcp"), []byte("credential-store"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *SQLiteStore) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *SQLiteStore) decrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
