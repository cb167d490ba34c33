// File: utils/crypto.go
package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"meetbridge/config"

	"golang.org/x/crypto/pbkdf2"
)

const credentialsKeySalt = "meetbridge-integration-credentials"

// credentialsKey derives the AES-256 key from the configured secret.
func credentialsKey() []byte {
	return pbkdf2.Key([]byte(config.AppConfig.CredentialsKey), []byte(credentialsKeySalt), 4096, 32, sha256.New)
}

// EncryptCredentials serializes and encrypts an integration credential map
// for storage at rest. Output is base64(nonce || ciphertext).
func EncryptCredentials(creds map[string]string) (string, error) {
	if config.AppConfig.CredentialsKey == "" {
		return "", errors.New("CREDENTIALS_KEY is not configured")
	}
	plain, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(credentialsKey())
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

	sealed := gcm.Seal(nonce, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptCredentials reverses EncryptCredentials.
func DecryptCredentials(encoded string) (map[string]string, error) {
	if config.AppConfig.CredentialsKey == "" {
		return nil, errors.New("CREDENTIALS_KEY is not configured")
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(credentialsKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("credential ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	var creds map[string]string
	if err := json.Unmarshal(plain, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}
