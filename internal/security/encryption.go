package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrKeyInvalid 密钥长度不合法
var ErrKeyInvalid = errors.New("encryption key must be 16, 24 or 32 bytes")

// ErrCiphertextInvalid 密文损坏或被篡改
var ErrCiphertextInvalid = errors.New("ciphertext invalid")

// Cipher AES-GCM 对称加密，输出格式 nonce || ciphertext
type Cipher struct {
	gcm cipher.AEAD
}

// NewCipher 创建加密器，key 长度需为 16/24/32 字节
func NewCipher(key []byte) (*Cipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrKeyInvalid, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Cipher{gcm: gcm}, nil
}

// Seal 加密，每次使用随机 nonce
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("rand nonce: %w", err)
	}
	return c.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open 解密 Seal 的输出
func (c *Cipher) Open(data []byte) ([]byte, error) {
	ns := c.gcm.NonceSize()
	if len(data) < ns+c.gcm.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrCiphertextInvalid)
	}
	nonce, ct := data[:ns], data[ns:]
	pt, err := c.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertextInvalid, err)
	}
	return pt, nil
}
