package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// EventProcessor consumes raw approval callback payloads
type EventProcessor interface {
	ProcessEvent(ctx context.Context, payload []byte) error
}

// WebhookVerifier authenticates callback requests before processing
type WebhookVerifier interface {
	VerifyChallenge(body []byte) (string, error)
	VerifySignature(timestamp, nonce, signature string, body []byte) bool
	DecryptPayload(body []byte) ([]byte, error)
}

// WebhookHandler receives approval collaborator callbacks. Requests must
// pass verification first; authenticated events are then acknowledged with
// 200 even when processing fails, so the collaborator does not retry into a
// poisoned loop.
type WebhookHandler struct {
	processor EventProcessor
	verifier  WebhookVerifier
	logger    Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(processor EventProcessor, verifier WebhookVerifier, logger Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		verifier:  verifier,
		logger:    logger,
	}
}

// Handle handles POST /webhook/approval
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable body"})
		return
	}

	payload, err := h.verifier.DecryptPayload(body)
	if err != nil {
		h.logger.Error("Webhook payload decryption failed", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "undecryptable payload"})
		return
	}

	// Endpoint verification handshake: validate the token, echo the challenge
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && probe.Type == "url_verification" {
		challenge, err := h.verifier.VerifyChallenge(payload)
		if err != nil {
			h.logger.Error("Webhook challenge verification failed", "error", err)
			c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "challenge verification failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"challenge": challenge})
		return
	}

	timestamp := c.GetHeader("X-Lark-Request-Timestamp")
	nonce := c.GetHeader("X-Lark-Request-Nonce")
	signature := c.GetHeader("X-Lark-Signature")
	if !h.verifier.VerifySignature(timestamp, nonce, signature, body) {
		h.logger.Error("Webhook signature verification failed",
			"timestamp", timestamp,
			"nonce", nonce,
		)
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid signature"})
		return
	}

	if err := h.processor.ProcessEvent(c.Request.Context(), payload); err != nil {
		h.logger.Error("Webhook event processing failed", "error", err)
	}

	c.JSON(http.StatusOK, Response{Success: true})
}
