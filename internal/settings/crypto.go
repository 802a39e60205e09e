package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// cipherBox encrypts setting values with AES-256-CBC. The wire format is
// "ivhex:cipherhex" so stored values stay readable by the original deployment.
type cipherBox struct {
	key []byte
}

var errBadCiphertext = errors.New("settings: malformed ciphertext")

func newCipherBox(passphrase string) (*cipherBox, error) {
	if passphrase == "" {
		return nil, errors.New("settings: encryption key is required")
	}
	// scrypt parameters match Node's crypto.scryptSync defaults so values
	// written by the previous deployment stay decryptable.
	key, err := scrypt.Key([]byte(passphrase), []byte("salt"), 16384, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("settings: derive key: %w", err)
	}
	return &cipherBox{key: key}, nil
}

func (b *cipherBox) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

func (b *cipherBox) decrypt(encrypted string) (string, error) {
	ivHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", errBadCiphertext
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", errBadCiphertext
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errBadCiphertext
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", err
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	pad := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+pad)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errBadCiphertext
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > blockSize || pad > len(b) {
		return nil, errBadCiphertext
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, errBadCiphertext
		}
	}
	return b[:len(b)-pad], nil
}
