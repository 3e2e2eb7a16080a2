package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const passcodeCost = 12

// HashPasscode 使用 bcrypt 生成口令哈希，写入 security.passcode_hash
func HashPasscode(passcode string) (string, error) {
	if len(passcode) < 4 {
		return "", fmt.Errorf("passcode must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), passcodeCost)
	if err != nil {
		return "", fmt.Errorf("hash passcode: %w", err)
	}
	return string(hash), nil
}

// CheckPasscode 验证明文口令与存储的哈希是否匹配。
func CheckPasscode(passcode, stored string) bool {
	if passcode == "" || stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(passcode)) == nil
}

// RandomString 生成指定长度的随机字符串（URL 安全，用于密钥、token 等）。
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}

// ----------------- AES-256-GCM 加密/解密（用于落盘数据） -----------------

// keySalt is fixed so the same secret always opens previously sealed values.
var keySalt = []byte("earnings-ledger/kv/v1")

// Cipher seals values with AES-256-GCM under a key derived once from a secret.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a 32-byte key from secret with PBKDF2-SHA256.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret is empty")
	}
	key := pbkdf2.Key([]byte(secret), keySalt, 100_000, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal 加密数据，返回 nonce+ciphertext。
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	ciphertext := c.aead.Seal(nil, nonce, plaintext, nil)
	// 前面拼上 nonce，解密时可以拆回来
	return append(nonce, ciphertext...), nil
}

// Open 解密数据（输入必须是 nonce+ciphertext）。
func (c *Cipher) Open(data []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	nonce, ciphertext := data[:ns], data[ns:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// SealString 把明文加密为 base64 字符串
func (c *Cipher) SealString(plain string) (string, error) {
	b, err := c.Seal([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// OpenString 解密 SealString 的结果
func (c *Cipher) OpenString(sealed string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	plain, err := c.Open(b)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
