package lark

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookVerifier_ChallengeToken(t *testing.T) {
	v := NewWebhookVerifier("token-1", "", zap.NewNop())

	body := []byte(`{"type":"url_verification","token":"token-1","challenge":"abc"}`)
	challenge, err := v.VerifyChallenge(body)
	require.NoError(t, err)
	assert.Equal(t, "abc", challenge)

	body = []byte(`{"type":"url_verification","token":"forged","challenge":"abc"}`)
	_, err = v.VerifyChallenge(body)
	require.Error(t, err)
}

func TestWebhookVerifier_ChallengeTokenSkippedWhenUnconfigured(t *testing.T) {
	v := NewWebhookVerifier("", "", zap.NewNop())

	body := []byte(`{"type":"url_verification","token":"anything","challenge":"abc"}`)
	challenge, err := v.VerifyChallenge(body)
	require.NoError(t, err)
	assert.Equal(t, "abc", challenge)
}

func TestWebhookVerifier_Signature(t *testing.T) {
	v := NewWebhookVerifier("", "secret-key", zap.NewNop())
	body := []byte(`{"event":{}}`)

	hash := sha256.Sum256([]byte("ts1" + "nonce1" + "secret-key" + string(body)))
	signature := fmt.Sprintf("%x", hash)

	assert.True(t, v.VerifySignature("ts1", "nonce1", signature, body))
	assert.False(t, v.VerifySignature("ts1", "nonce1", "forged", body))
	assert.False(t, v.VerifySignature("ts2", "nonce1", signature, body))
}

func TestWebhookVerifier_SignatureOpenWithoutKey(t *testing.T) {
	v := NewWebhookVerifier("", "", zap.NewNop())
	assert.True(t, v.VerifySignature("", "", "", []byte("anything")))
}

func TestWebhookVerifier_DecryptRoundTrip(t *testing.T) {
	const key = "encrypt-key"
	v := NewWebhookVerifier("", key, zap.NewNop())

	plaintext := []byte(`{"header":{"event_type":"approval.instance.approved"}}`)
	envelope, err := json.Marshal(map[string]string{
		"encrypt": encryptForTest(t, key, plaintext),
	})
	require.NoError(t, err)

	got, err := v.DecryptPayload(envelope)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestWebhookVerifier_PlainPayloadPassesThrough(t *testing.T) {
	v := NewWebhookVerifier("", "encrypt-key", zap.NewNop())

	body := []byte(`{"header":{"event_type":"approval.instance.approved"}}`)
	got, err := v.DecryptPayload(body)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestWebhookVerifier_EncryptedPayloadWithoutKeyRejected(t *testing.T) {
	v := NewWebhookVerifier("", "", zap.NewNop())

	_, err := v.DecryptPayload([]byte(`{"encrypt":"AAAA"}`))
	require.Error(t, err)
}

// encryptForTest mirrors the callback encryption: AES-256-CBC with the key
// zero-padded to 32 bytes, a random IV prefix, and PKCS7 padding.
func encryptForTest(t *testing.T, key string, plaintext []byte) string {
	t.Helper()

	padded := make([]byte, 32)
	copy(padded, key)
	block, err := aes.NewCipher(padded)
	require.NoError(t, err)

	padding := aes.BlockSize - len(plaintext)%aes.BlockSize
	for i := 0; i < padding; i++ {
		plaintext = append(plaintext, byte(padding))
	}

	ciphertext := make([]byte, aes.BlockSize+len(plaintext))
	iv := ciphertext[:aes.BlockSize]
	_, err = rand.Read(iv)
	require.NoError(t, err)

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext[aes.BlockSize:], plaintext)
	return base64.StdEncoding.EncodeToString(ciphertext)
}
