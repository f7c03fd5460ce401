package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/application/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	claimService service.ClaimService
	leaveService service.LeaveService
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(claimService service.ClaimService, leaveService service.LeaveService, logger Logger) *Handlers {
	return &Handlers{
		claimService: claimService,
		leaveService: leaveService,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// decisionRequest carries the actor and reason for reject/cancel actions
type decisionRequest struct {
	ActorID int64  `json:"actor_id"`
	Reason  string `json:"reason"`
}

// approveRequest carries the approver for approve actions
type approveRequest struct {
	ApproverID int64 `json:"approver_id" binding:"required"`
}

type listRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateClaim handles POST /api/claims
func (h *Handlers) CreateClaim(c *gin.Context) {
	var input service.CreateClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	claim, err := h.claimService.Create(c.Request.Context(), input, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: claim})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	claim, err := h.claimService.Get(c.Request.Context(), id, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// ListClaims handles GET /api/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	claims, err := h.claimService.List(c.Request.Context(), requestScope(c), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claims})
}

// UpdateClaim handles PATCH /api/claims/:id
func (h *Handlers) UpdateClaim(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var patch service.UpdateClaimInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	claim, err := h.claimService.Update(c.Request.Context(), id, patch, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// DeleteClaim handles DELETE /api/claims/:id
func (h *Handlers) DeleteClaim(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.claimService.Delete(c.Request.Context(), id, requestScope(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ApproveClaim handles POST /api/claims/:id/approve
func (h *Handlers) ApproveClaim(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "approver_id is required")
		return
	}

	claim, err := h.claimService.Approve(c.Request.Context(), id, req.ApproverID, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// RejectClaim handles POST /api/claims/:id/reject
func (h *Handlers) RejectClaim(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	claim, err := h.claimService.Reject(c.Request.Context(), id, req.Reason, req.ActorID, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// CancelClaim handles POST /api/claims/:id/cancel
func (h *Handlers) CancelClaim(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	claim, err := h.claimService.Cancel(c.Request.Context(), id, req.Reason, req.ActorID, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// ClaimNotifications handles GET /api/claims/:id/notifications
func (h *Handlers) ClaimNotifications(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	trail, err := h.claimService.Notifications(c.Request.Context(), id, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: trail})
}

// CreateLeave handles POST /api/leave
func (h *Handlers) CreateLeave(c *gin.Context) {
	var input service.CreateLeaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	leave, err := h.leaveService.Create(c.Request.Context(), input, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: leave})
}

// GetLeave handles GET /api/leave/:id
func (h *Handlers) GetLeave(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	leave, err := h.leaveService.Get(c.Request.Context(), id, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leave})
}

// ListLeave handles GET /api/leave
func (h *Handlers) ListLeave(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	leaves, err := h.leaveService.List(c.Request.Context(), requestScope(c), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leaves})
}

// UpdateLeave handles PATCH /api/leave/:id
func (h *Handlers) UpdateLeave(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var patch service.UpdateLeaveInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	leave, err := h.leaveService.Update(c.Request.Context(), id, patch, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leave})
}

// DeleteLeave handles DELETE /api/leave/:id
func (h *Handlers) DeleteLeave(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.leaveService.Delete(c.Request.Context(), id, requestScope(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ApproveLeave handles POST /api/leave/:id/approve
func (h *Handlers) ApproveLeave(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "approver_id is required")
		return
	}

	leave, err := h.leaveService.Approve(c.Request.Context(), id, req.ApproverID, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leave})
}

// RejectLeave handles POST /api/leave/:id/reject
func (h *Handlers) RejectLeave(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	leave, err := h.leaveService.Reject(c.Request.Context(), id, req.Reason, req.ActorID, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leave})
}

// CancelLeave handles POST /api/leave/:id/cancel
func (h *Handlers) CancelLeave(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	leave, err := h.leaveService.Cancel(c.Request.Context(), id, req.Reason, req.ActorID, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leave})
}

// MarkLeaveTaken handles POST /api/leave/:id/taken
func (h *Handlers) MarkLeaveTaken(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req struct {
		Partial bool `json:"partial"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	leave, err := h.leaveService.MarkTaken(c.Request.Context(), id, req.Partial, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: leave})
}

// LeaveNotifications handles GET /api/leave/:id/notifications
func (h *Handlers) LeaveNotifications(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	trail, err := h.leaveService.Notifications(c.Request.Context(), id, requestScope(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: trail})
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// writeError maps service errors onto HTTP statuses
func (h *Handlers) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var nferr *service.NotFoundError
	var terr *service.InvalidStateTransitionError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: verr.Error()})
	case errors.As(err, &nferr):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: nferr.Error()})
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, Response{Success: false, Error: terr.Error()})
	case errors.Is(err, port.ErrVersionConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "record was modified concurrently, retry"})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
