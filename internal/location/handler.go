package location

import (
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
	rg.GET("/locations", h.list)
	rg.POST("/locations", h.create)
	rg.GET("/locations/:id", h.get)
	rg.PUT("/locations/:id", h.update)
	rg.DELETE("/locations/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	locations, err := h.Repo.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (h *Handler) get(c *gin.Context) {
	loc, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if loc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, loc)
}

type createReq struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Region    *string `json:"region"`
	District  *string `json:"district"`
	Postcode  *string `json:"postcode"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	MapsURL   *string `json:"maps_url"`
	IsDefault bool    `json:"is_default"`
	IsActive  *bool   `json:"is_active"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Address == "" || req.City == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, address, city and phone are required"})
		return
	}

	loc := models.StoreLocation{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Region:    req.Region,
		District:  req.District,
		Postcode:  req.Postcode,
		Phone:     req.Phone,
		Email:     req.Email,
		MapsURL:   req.MapsURL,
		IsDefault: req.IsDefault,
		IsActive:  req.IsActive == nil || *req.IsActive,
	}

	if err := h.Repo.Create(c.Request.Context(), loc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), loc.ID)
	if err != nil || saved == nil {
		c.JSON(http.StatusCreated, loc)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

type updateReq struct {
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Region    *string `json:"region"`
	District  *string `json:"district"`
	Postcode  *string `json:"postcode"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	MapsURL   *string `json:"maps_url"`
	IsDefault *bool   `json:"is_default"`
	IsActive  *bool   `json:"is_active"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	for _, field := range []*string{req.Name, req.Address, req.City, req.Phone} {
		if field != nil && strings.TrimSpace(*field) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, address, city and phone cannot be blank"})
			return
		}
	}

	ok, err := h.Repo.Update(c.Request.Context(), c.Param("id"), Patch{
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Region:    req.Region,
		District:  req.District,
		Postcode:  req.Postcode,
		Phone:     req.Phone,
		Email:     req.Email,
		MapsURL:   req.MapsURL,
		IsDefault: req.IsDefault,
		IsActive:  req.IsActive,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	loc, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || loc == nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *Handler) delete(c *gin.Context) {
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
