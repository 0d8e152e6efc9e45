// utils/remember_me.go
package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// RememberedCredentials is the encrypted blob stored against a remember-me token
type RememberedCredentials struct {
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	AccountType string    `json:"accountType"`
	UserID      string    `json:"userId"`
	ExpiresAt   time.Time `json:"expiresAt"`
	DeviceInfo  string    `json:"deviceInfo"`
}

// RememberMeToken is handed to the client for later credential retrieval
type RememberMeToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

const rememberMeTTL = 30 * 24 * time.Hour

func rememberMeKey(token string) string {
	return "remember_me:" + token
}

func encryptionKey() ([]byte, error) {
	key := os.Getenv("REMEMBER_ME_KEY")
	if key == "" {
		return nil, errors.New("REMEMBER_ME_KEY environment variable is required")
	}
	if len(key) != 32 {
		return nil, errors.New("REMEMBER_ME_KEY must be exactly 32 bytes")
	}
	return []byte(key), nil
}

func encryptCredentials(creds *RememberedCredentials) (string, error) {
	key, err := encryptionKey()
	if err != nil {
		return "", err
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptCredentials(encoded string) (*RememberedCredentials, error) {
	key, err := encryptionKey()
	if err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, data := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, err
	}

	var creds RememberedCredentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// StoreRememberedCredentials encrypts and stores credentials, returning the token
func StoreRememberedCredentials(ctx context.Context, rdb *redis.Client, creds *RememberedCredentials) (*RememberMeToken, error) {
	if rdb == nil {
		return nil, errors.New("remember me is unavailable")
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}
	token := fmt.Sprintf("%x", tokenBytes)

	creds.ExpiresAt = time.Now().Add(rememberMeTTL)
	encrypted, err := encryptCredentials(creds)
	if err != nil {
		return nil, err
	}

	if err := rdb.Set(ctx, rememberMeKey(token), encrypted, rememberMeTTL).Err(); err != nil {
		return nil, err
	}

	return &RememberMeToken{Token: token, ExpiresAt: creds.ExpiresAt}, nil
}

// GetRememberedCredentials retrieves and decrypts credentials for a token
func GetRememberedCredentials(ctx context.Context, rdb *redis.Client, token string) (*RememberedCredentials, error) {
	if rdb == nil {
		return nil, errors.New("remember me is unavailable")
	}

	encrypted, err := rdb.Get(ctx, rememberMeKey(token)).Result()
	if err == redis.Nil {
		return nil, errors.New("remembered credentials not found")
	}
	if err != nil {
		return nil, err
	}

	creds, err := decryptCredentials(encrypted)
	if err != nil {
		return nil, err
	}

	if time.Now().After(creds.ExpiresAt) {
		rdb.Del(ctx, rememberMeKey(token))
		return nil, errors.New("remembered credentials expired")
	}

	return creds, nil
}

// RemoveRememberedCredentials deletes the stored credentials for a token
func RemoveRememberedCredentials(ctx context.Context, rdb *redis.Client, token string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, rememberMeKey(token)).Err()
}
