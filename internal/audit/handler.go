package audit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/logs", h.list)
}

func (h *Handler) list(c *gin.Context) {
	level := strings.TrimSpace(c.Query("level"))
	switch level {
	case "", "debug", "info", "warn", "error":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level"})
		return
	}

	page, err := h.Repo.List(c.Request.Context(), ListQuery{
		Level: level,
		Page:  atoi(c.Query("page"), 0),
		Limit: atoi(c.Query("limit"), 50),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
