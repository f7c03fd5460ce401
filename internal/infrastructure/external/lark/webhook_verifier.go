package lark

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// WebhookVerifier authenticates approval callbacks before they reach the
// event pipeline. Both checks are optional: an empty verify token skips the
// challenge token match, an empty encrypt key skips signature verification
// and payload decryption.
type WebhookVerifier struct {
	verifyToken string
	encryptKey  string
	logger      *zap.Logger
}

// NewWebhookVerifier creates a new webhook verifier
func NewWebhookVerifier(verifyToken, encryptKey string, logger *zap.Logger) *WebhookVerifier {
	return &WebhookVerifier{
		verifyToken: verifyToken,
		encryptKey:  encryptKey,
		logger:      logger,
	}
}

// VerifyChallenge validates a url_verification handshake and returns the
// challenge string to echo back.
func (v *WebhookVerifier) VerifyChallenge(body []byte) (string, error) {
	var challenge struct {
		Challenge string `json:"challenge"`
		Token     string `json:"token"`
		Type      string `json:"type"`
	}

	if err := json.Unmarshal(body, &challenge); err != nil {
		return "", fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	if challenge.Type != "url_verification" {
		return "", fmt.Errorf("invalid challenge type: %s", challenge.Type)
	}

	if v.verifyToken != "" && challenge.Token != v.verifyToken {
		return "", fmt.Errorf("invalid verification token")
	}

	return challenge.Challenge, nil
}

// VerifySignature checks the event signature over the raw request body.
// The signature is SHA-256 over timestamp + nonce + encrypt key + body.
func (v *WebhookVerifier) VerifySignature(timestamp, nonce, signature string, body []byte) bool {
	if v.encryptKey == "" {
		return true
	}

	content := timestamp + nonce + v.encryptKey + string(body)
	hash := sha256.Sum256([]byte(content))
	calculated := fmt.Sprintf("%x", hash)

	return calculated == signature
}

// DecryptPayload unwraps an encrypted callback envelope. Payloads without an
// encrypt field, or when no encrypt key is configured, pass through as-is.
func (v *WebhookVerifier) DecryptPayload(body []byte) ([]byte, error) {
	var envelope struct {
		Encrypt string `json:"encrypt"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Encrypt == "" {
		return body, nil
	}
	if v.encryptKey == "" {
		return nil, fmt.Errorf("received encrypted payload but no encrypt key is configured")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Encrypt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	block, err := aes.NewCipher(v.cipherKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(ciphertext) < aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("invalid ciphertext length %d", len(ciphertext))
	}

	iv := ciphertext[:aes.BlockSize]
	ciphertext = ciphertext[aes.BlockSize:]

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return removePKCS7Padding(plaintext), nil
}

// cipherKey pads or truncates the configured key to 32 bytes for AES-256
func (v *WebhookVerifier) cipherKey() []byte {
	key := make([]byte, 32)
	copy(key, v.encryptKey)
	return key
}

func removePKCS7Padding(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > len(data) || padding > aes.BlockSize {
		return data
	}

	return data[:len(data)-padding]
}
