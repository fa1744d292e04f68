package persistence

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tafel/pkg/domain"
)

// ErrInvalidKey is returned when an encryption key is not 32 bytes long.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// envelope is the stored form of a sealed session.
// Only the client ID stays readable for operators.
type envelope struct {
	ClientID string `json:"client_id"`
	Sealed   string `json:"sealed"`
}

// SealedCodec encrypts the output of another codec using AES-GCM.
type SealedCodec struct {
	next   Codec
	config EncryptionConfig
}

// NewSealedCodec wraps next with envelope encryption.
func NewSealedCodec(next Codec, config EncryptionConfig) (*SealedCodec, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrInvalidKey
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, ErrInvalidKey
		}
	}
	if next == nil {
		next = JSONCodec{}
	}
	return &SealedCodec{next: next, config: config}, nil
}

// DecodeKey parses a base64 encoded 32 byte key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key base64: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Marshal implements Codec.
func (c *SealedCodec) Marshal(session *domain.Session) ([]byte, error) {
	plainText, err := c.next.Marshal(session)
	if err != nil {
		return nil, err
	}

	ciphertext, err := encrypt(plainText, c.config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt session: %w", err)
	}

	return json.Marshal(envelope{
		ClientID: session.ClientID,
		Sealed:   base64.StdEncoding.EncodeToString(ciphertext),
	})
}

// Unmarshal implements Codec.
func (c *SealedCodec) Unmarshal(data []byte) (*domain.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Sealed == "" {
		// Fail secure: plain sessions are not accepted once encryption is configured.
		return nil, errors.New("session is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, c.config.ActiveKey, c.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	return c.next.Unmarshal(plainText)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
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

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
