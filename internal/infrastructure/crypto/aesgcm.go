// Package crypto seals secrets at rest with AES-256-GCM.
//
// Sealed values use the textual format hex(salt):hex(iv):hex(tag):hex(ciphertext).
// Each value carries its own random salt; the AES key is derived from the
// master secret and that salt with PBKDF2-HMAC-SHA512.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize         = 64
	IVSize           = 16
	TagSize          = 16
	KeySize          = 32
	DefaultIter      = 100000
	MinMasterKeySize = 32
)

var (
	// ErrMalformed is returned when a sealed value does not follow the wire format.
	ErrMalformed = errors.New("crypto: malformed ciphertext")
	// ErrAuthentication is returned when the tag does not verify (wrong key or tampering).
	ErrAuthentication = errors.New("crypto: message authentication failed")
	// ErrWeakMasterKey is returned when the master secret is too short.
	ErrWeakMasterKey = errors.New("crypto: master key must be at least 32 bytes")
)

// AESGCM implements apikey.Encrypter
type AESGCM struct {
	master     []byte
	iterations int
}

// Option configures AESGCM
type Option func(*AESGCM)

// WithIterations overrides the PBKDF2 iteration count
func WithIterations(n int) Option {
	return func(a *AESGCM) {
		if n > 0 {
			a.iterations = n
		}
	}
}

// NewAESGCM returns a sealer keyed by masterKey
func NewAESGCM(masterKey string, opts ...Option) (*AESGCM, error) {
	if len(masterKey) < MinMasterKeySize {
		return nil, ErrWeakMasterKey
	}
	a := &AESGCM{master: []byte(masterKey), iterations: DefaultIter}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Encrypt seals plaintext with a fresh salt and IV
func (a *AESGCM) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypto: read salt: %w", err)
	}
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("crypto: read iv: %w", err)
	}

	gcm, err := a.aead(salt)
	if err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	return strings.Join([]string{
		hex.EncodeToString(salt),
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt opens a value produced by Encrypt
func (a *AESGCM) Decrypt(value string) (string, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 4 {
		return "", fmt.Errorf("%w: expected 4 parts, got %d", ErrMalformed, len(parts))
	}
	salt, err := decodePart(parts[0], SaltSize, "salt")
	if err != nil {
		return "", err
	}
	iv, err := decodePart(parts[1], IVSize, "iv")
	if err != nil {
		return "", err
	}
	tag, err := decodePart(parts[2], TagSize, "tag")
	if err != nil {
		return "", err
	}
	ciphertext, err := hex.DecodeString(parts[3])
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not hex", ErrMalformed)
	}

	gcm, err := a.aead(salt)
	if err != nil {
		return "", err
	}
	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrAuthentication
	}
	return string(plaintext), nil
}

func (a *AESGCM) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(a.master, salt, a.iterations, KeySize, sha512.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("crypto: new gcm: %w", err)
	}
	return gcm, nil
}

func decodePart(s string, size int, name string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not hex", ErrMalformed, name)
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: %s must be %d bytes", ErrMalformed, name, size)
	}
	return b, nil
}
