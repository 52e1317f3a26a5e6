package category

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.list)
	rg.POST("/categories", h.create)
	rg.GET("/categories/:id", h.getByID)
	rg.PUT("/categories/:id", h.update)
	rg.DELETE("/categories/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	if c.Query("with_count") == "true" {
		categories, err := h.Repo.ListWithCount(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
		return
	}

	categories, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) getByID(c *gin.Context) {
	cat, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, cat)
}

type createReq struct {
	Name               string `json:"name"`
	DefaultDisplayMode string `json:"default_display_mode"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	mode := models.DisplayMode(req.DefaultDisplayMode)
	if req.DefaultDisplayMode == "" {
		mode = models.DisplayIndividual
	}
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "default_display_mode must be grouped or individual"})
		return
	}

	cat := models.Category{
		ID:                 uuid.NewString(),
		Name:               name,
		DefaultDisplayMode: mode,
	}
	if err := h.Repo.Create(c.Request.Context(), cat); err != nil {
		if errors.Is(err, ErrNameExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), cat.ID)
	if err != nil || saved == nil {
		c.JSON(http.StatusCreated, cat)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

type updateReq struct {
	Name               *string `json:"name"`
	DefaultDisplayMode *string `json:"default_display_mode"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	patch := Patch{Name: req.Name}
	if req.DefaultDisplayMode != nil {
		mode := models.DisplayMode(*req.DefaultDisplayMode)
		if !mode.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "default_display_mode must be grouped or individual"})
			return
		}
		patch.DefaultDisplayMode = &mode
	}

	ok, err := h.Repo.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, ErrNameExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || saved == nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	ok, err := h.Repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
