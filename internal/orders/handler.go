package orders

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deanAirre/saisoku-admin/internal/auth"
	"github.com/deanAirre/saisoku-admin/internal/events"
	"github.com/deanAirre/saisoku-admin/internal/storage"
	"github.com/deanAirre/saisoku-admin/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Receipts storage.Store
	Hub      *events.Hub
	Log      *zap.Logger
}

func NewHandler(repo *Repo, receipts storage.Store, hub *events.Hub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Repo: repo, Receipts: receipts, Hub: hub, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.list)
	rg.GET("/orders/stats", h.stats)
	rg.GET("/orders/:id", h.get)
	rg.PUT("/orders/:id/status", h.updateStatus)
	rg.GET("/orders/:id/payment-proof", h.paymentProof)
	rg.POST("/orders/:id/payment/approve", h.approvePayment)
	rg.POST("/orders/:id/payment/reject", h.rejectPayment)
	rg.POST("/orders/:id/ship", h.markShipped)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Search: c.Query("q"),
		Page:   atoi(c.Query("page"), 0),
		Limit:  atoi(c.Query("limit"), 20),
	}
	if s := c.Query("status"); s != "" {
		status := models.OrderStatus(s)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		q.Status = status
	}

	page, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) get(c *gin.Context) {
	order, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Repo.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.moveOrder(c, models.OrderStatus(req.Status))
}

func (h *Handler) markShipped(c *gin.Context) {
	h.moveOrder(c, models.OrderShipped)
}

func (h *Handler) moveOrder(c *gin.Context, to models.OrderStatus) {
	order, err := h.Repo.UpdateStatus(c.Request.Context(), c.Param("id"), to)
	if err != nil {
		if errors.Is(err, ErrTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	claims := auth.MustGetClaims(c)
	if h.Hub != nil {
		h.Hub.Broadcast(events.NewOrderStatus(order, claims.AdminID))
	}
	c.JSON(http.StatusOK, order)
}

// paymentProof returns the latest proof with a freshly signed receipt URL.
// Receipt URLs expire after an hour, so the stored URL is only a locator.
func (h *Handler) paymentProof(c *gin.Context) {
	proof, err := h.Repo.LatestProof(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if proof == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no payment proof"})
		return
	}

	if h.Receipts != nil {
		if key := storage.KeyFromURL(proof.ImageURL, "receipts"); key != "" {
			url, err := h.Receipts.SignedURL(key, storage.ReceiptURLTTL)
			if err != nil {
				h.Log.Warn("receipt re-sign failed", zap.String("key", key), zap.Error(err))
			} else {
				proof.ImageURL = url
			}
		}
	}
	c.JSON(http.StatusOK, proof)
}

type reviewReq struct {
	Notes *string `json:"notes"`
}

func (h *Handler) approvePayment(c *gin.Context) {
	h.reviewPayment(c, true)
}

func (h *Handler) rejectPayment(c *gin.Context) {
	h.reviewPayment(c, false)
}

func (h *Handler) reviewPayment(c *gin.Context, approve bool) {
	var req reviewReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	if !approve && (req.Notes == nil || strings.TrimSpace(*req.Notes) == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notes required when rejecting"})
		return
	}

	claims := auth.MustGetClaims(c)
	order, proof, err := h.Repo.ReviewProof(c.Request.Context(), c.Param("id"), claims.AdminID, approve, req.Notes)
	if err != nil {
		if errors.Is(err, ErrTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast(events.NewPaymentReviewed(order, claims.AdminID, approve))
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "payment_proof": proof})
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
