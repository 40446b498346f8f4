package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// Box encrypts and digests values for a single purpose.
// It is safe for concurrent use.
type Box struct {
	aead   cipher.AEAD
	macKey []byte
}

// New derives a Box for purpose from a 32-byte master key. Boxes created for
// different purposes share no key material.
func New(master []byte, purpose string) (*Box, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidMasterKey
	}
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	encKey, err := deriveKey(master, purpose+"/enc")
	if err != nil {
		return nil, err
	}
	macKey, err := deriveKey(master, purpose+"/mac")
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	return &Box{aead: aead, macKey: macKey}, nil
}

// Seal encrypts plaintext with a random nonce.
func (b *Box) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (b *Box) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	nonceSize := b.aead.NonceSize()
	if len(raw) < nonceSize+b.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := b.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// Digest returns the hex HMAC-SHA-256 of value. Equal inputs yield equal
// digests, so callers normalise value first.
func (b *Box) Digest(value string) string {
	mac := hmac.New(sha256.New, b.macKey)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
