package secrets

import "errors"

var (
	ErrInvalidMasterKey    = errors.New("secrets: master key must be 32 bytes")
	ErrEmptyPurpose        = errors.New("secrets: purpose must not be empty")
	ErrKeyDerivationFailed = errors.New("secrets: key derivation failed")
	ErrEncryptionFailed    = errors.New("secrets: encryption failed")
	ErrDecryptionFailed    = errors.New("secrets: decryption failed")
	ErrInvalidCiphertext   = errors.New("secrets: invalid ciphertext")
)
