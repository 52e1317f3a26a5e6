package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deanAirre/saisoku-admin/internal/storage"
	"github.com/deanAirre/saisoku-admin/pkg/models"
)

// RulesFunc supplies the category display rules for a request. Wiring
// layers DB-backed category defaults over the legacy static table.
type RulesFunc func(ctx context.Context) (DisplayRules, error)

type Handler struct {
	Repo   *Repo
	Photos storage.Store
	Rules  RulesFunc
	Log    *zap.Logger
}

func NewHandler(repo *Repo, photos storage.Store, rules RulesFunc, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Repo: repo, Photos: photos, Rules: rules, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.listProducts)
	rg.GET("/products/grouped", h.listGrouped)
	rg.GET("/products/stats", h.productStats)
	rg.POST("/products", h.createProduct)
	rg.GET("/products/:id", h.getProduct)
	rg.PUT("/products/:id", h.updateProduct)
	rg.DELETE("/products/:id", h.deleteProduct)

	rg.POST("/variants", h.createVariant)
	rg.PUT("/variants/:id", h.updateVariant)
	rg.DELETE("/variants/:id", h.deleteVariant)
	rg.PUT("/variants/:id/stock", h.updateStock)
	rg.GET("/variants/:id/images", h.listImages)
	rg.POST("/variants/:id/images", h.uploadImage)

	rg.PUT("/images/:id", h.updateImage)
	rg.PUT("/images/:id/primary", h.setPrimaryImage)
	rg.DELETE("/images/:id", h.deleteImage)
}

// ---------- grouped listing ----------

func (h *Handler) listGrouped(c *gin.Context) {
	opts := GroupPageOptions{
		Page:     parseInt(c.Query("page"), 0),
		Size:     parseInt(c.Query("size"), 20),
		SortBy:   SortKey(c.DefaultQuery("sort_by", string(SortName))),
		Category: c.Query("category"),

		EmitAllIndividualVariants: c.Query("expand_individual") == "true",
	}
	if opts.Page < 0 {
		opts.Page = 0
	}
	if opts.Size < 1 || opts.Size > 100 {
		opts.Size = 20
	}

	rules := DefaultDisplayRules()
	if h.Rules != nil {
		r, err := h.Rules(c.Request.Context())
		if err != nil {
			h.Log.Warn("display rules unavailable, using defaults", zap.Error(err))
		} else {
			rules = r
		}
	}
	opts.Rules = rules

	feed, err := h.Repo.ListVariantFeed(c.Request.Context(), FeedQuery{
		Category: opts.Category,
		Search:   c.Query("search"),
		Featured: c.Query("featured") == "true",
		SortBy:   opts.SortBy,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, BuildGroupedPage(feed, opts))
}

// ---------- products ----------

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.Repo.ListProductsAdmin(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.Repo.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) productStats(c *gin.Context) {
	stats, err := h.Repo.ProductStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type createVariantBody struct {
	SKU         string  `json:"sku"`
	VariantName string  `json:"variant_name"`
	Size        *string `json:"size"`
	Color       *string `json:"color"`
	ColorHex    *string `json:"color_hex"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	IsActive    *bool   `json:"is_active"`
}

type createProductReq struct {
	Name               string  `json:"name"`
	CategoryID         string  `json:"category_id"`
	Category           *string `json:"category"`
	Description        *string `json:"description"`
	DescriptionEnglish *string `json:"description_english"`
	DisplayMode        *string `json:"display_mode"`
	IsFeatured         *bool   `json:"is_featured"`
	IsActive           *bool   `json:"is_active"`

	// optional first variant, created atomically with the product
	Variant *createVariantBody `json:"variant"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if req.CategoryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id required"})
		return
	}
	displayMode := "individual"
	if req.DisplayMode != nil {
		if !models.DisplayMode(*req.DisplayMode).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_mode must be grouped or individual"})
			return
		}
		displayMode = *req.DisplayMode
	}

	product := models.Product{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		CategoryID:         &req.CategoryID,
		Category:           req.Category,
		Description:        req.Description,
		DescriptionEnglish: req.DescriptionEnglish,
		DisplayMode:        &displayMode,
		IsFeatured:         req.IsFeatured != nil && *req.IsFeatured,
		IsActive:           req.IsActive == nil || *req.IsActive,
	}

	var variant *models.Variant

	saga := NewSaga(h.Log)
	saga.Add("create product",
		func(ctx context.Context) error { return h.Repo.CreateProduct(ctx, product) },
		func(ctx context.Context) error {
			_, err := h.Repo.DeleteProduct(ctx, product.ID)
			return err
		},
	)
	if req.Variant != nil {
		saga.Add("create variant",
			func(ctx context.Context) error {
				v, err := h.buildVariant(ctx, product.ID, *req.Variant)
				if err != nil {
					return err
				}
				variant = v
				return h.Repo.CreateVariant(ctx, *v)
			},
			func(ctx context.Context) error {
				if variant == nil {
					return nil
				}
				_, err := h.Repo.DeleteVariant(ctx, variant.ID)
				return err
			},
		)
	}

	if err := saga.Run(c.Request.Context()); err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrSKUExists) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": fmt.Sprintf("%s failed", stepErr.Step)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	resp := gin.H{"product": product}
	if variant != nil {
		resp["variant"] = variant
	}
	c.JSON(http.StatusCreated, resp)
}

type updateProductReq struct {
	Name               *string `json:"name"`
	CategoryID         *string `json:"category_id"`
	Description        *string `json:"description"`
	DescriptionEnglish *string `json:"description_english"`
	DisplayMode        *string `json:"display_mode"`
	IsFeatured         *bool   `json:"is_featured"`
	IsActive           *bool   `json:"is_active"`
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.DisplayMode != nil && !models.DisplayMode(*req.DisplayMode).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_mode must be grouped or individual"})
		return
	}

	ok, err := h.Repo.UpdateProduct(c.Request.Context(), c.Param("id"), ProductPatch{
		Name:               req.Name,
		CategoryID:         req.CategoryID,
		Description:        req.Description,
		DescriptionEnglish: req.DescriptionEnglish,
		DisplayMode:        req.DisplayMode,
		IsFeatured:         req.IsFeatured,
		IsActive:           req.IsActive,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	p, err := h.Repo.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil || p == nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	ok, err := h.Repo.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrHasVariants) {
			c.JSON(http.StatusConflict, gin.H{"error": "product has variants, delete them first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ---------- variants ----------

func (h *Handler) buildVariant(ctx context.Context, productID string, body createVariantBody) (*models.Variant, error) {
	sku := strings.TrimSpace(body.SKU)
	name := strings.TrimSpace(body.VariantName)
	if sku == "" || name == "" {
		return nil, errors.New("sku and variant_name required")
	}
	if body.Price < 0 {
		return nil, errors.New("price must be >= 0")
	}
	if body.Stock < 0 {
		return nil, errors.New("stock must be >= 0")
	}

	base := VariantSlug(name, deref(body.Color), deref(body.Size))
	slug, err := h.Repo.UniqueVariantSlug(ctx, base, "")
	if err != nil {
		return nil, err
	}

	return &models.Variant{
		ID:          uuid.NewString(),
		ProductID:   productID,
		SKU:         sku,
		Slug:        &slug,
		VariantName: name,
		Size:        body.Size,
		Color:       body.Color,
		ColorHex:    body.ColorHex,
		Price:       body.Price,
		Stock:       body.Stock,
		IsActive:    body.IsActive == nil || *body.IsActive,
	}, nil
}

type createVariantReq struct {
	ProductID string `json:"product_id"`
	createVariantBody
}

func (h *Handler) createVariant(c *gin.Context) {
	var req createVariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id required"})
		return
	}

	p, err := h.Repo.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get product failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	v, err := h.buildVariant(c.Request.Context(), req.ProductID, req.createVariantBody)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Repo.CreateVariant(c.Request.Context(), *v); err != nil {
		if errors.Is(err, ErrSKUExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "sku already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, v)
}

type updateVariantReq struct {
	SKU         *string  `json:"sku"`
	VariantName *string  `json:"variant_name"`
	Size        *string  `json:"size"`
	Color       *string  `json:"color"`
	ColorHex    *string  `json:"color_hex"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	IsActive    *bool    `json:"is_active"`
}

func (h *Handler) updateVariant(c *gin.Context) {
	var req updateVariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be >= 0"})
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be >= 0"})
		return
	}

	id := c.Param("id")
	existing, err := h.Repo.GetVariant(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	patch := VariantPatch{
		SKU:         req.SKU,
		VariantName: req.VariantName,
		Size:        req.Size,
		Color:       req.Color,
		ColorHex:    req.ColorHex,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}

	// identity attributes changed: regenerate the slug
	if req.VariantName != nil || req.Color != nil || req.Size != nil {
		name := existing.VariantName
		if req.VariantName != nil {
			name = *req.VariantName
		}
		color := deref(existing.Color)
		if req.Color != nil {
			color = *req.Color
		}
		size := deref(existing.Size)
		if req.Size != nil {
			size = *req.Size
		}
		slug, err := h.Repo.UniqueVariantSlug(c.Request.Context(), VariantSlug(name, color, size), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "slug failed"})
			return
		}
		patch.Slug = &slug
	}

	ok, err := h.Repo.UpdateVariant(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, ErrSKUExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "sku already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	v, err := h.Repo.GetVariant(c.Request.Context(), id)
	if err != nil || v == nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) deleteVariant(c *gin.Context) {
	id := c.Param("id")

	// storage objects first, best effort; a dangling object is recoverable,
	// a dangling DB row pointing nowhere is not
	images, err := h.Repo.ListImages(c.Request.Context(), id)
	if err == nil {
		for _, img := range images {
			h.removeStoredImage(c.Request.Context(), img.ImageURL)
		}
	}

	ok, err := h.Repo.DeleteVariant(c.Request.Context(), id)
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

type stockReq struct {
	Stock    *int `json:"stock"`
	Decrease *int `json:"decrease"`
}

func (h *Handler) updateStock(c *gin.Context) {
	var req stockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id := c.Param("id")
	var v *models.Variant
	var err error

	switch {
	case req.Stock != nil:
		if *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be >= 0"})
			return
		}
		v, err = h.Repo.SetStock(c.Request.Context(), id, *req.Stock)
	case req.Decrease != nil:
		if *req.Decrease <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "decrease must be > 0"})
			return
		}
		v, err = h.Repo.DecreaseStock(c.Request.Context(), id, *req.Decrease)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock or decrease required"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stock update failed"})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// ---------- images ----------

func (h *Handler) listImages(c *gin.Context) {
	images, err := h.Repo.ListImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *Handler) uploadImage(c *gin.Context) {
	variantID := c.Param("id")
	v, err := h.Repo.GetVariant(c.Request.Context(), variantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get variant failed"})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "variant not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	displayOrder := parseInt(c.PostForm("display_order"), 0)
	isPrimary := c.PostForm("is_primary") == "true"

	key := storage.VariantImageKey(variantID, file.Filename, time.Now())

	var signedURL string
	img := models.VariantImage{
		ID:           uuid.NewString(),
		VariantID:    variantID,
		DisplayOrder: displayOrder,
		IsPrimary:    isPrimary,
	}

	saga := NewSaga(h.Log)
	saga.Add("upload image",
		func(ctx context.Context) error {
			src, err := file.Open()
			if err != nil {
				return err
			}
			defer src.Close()
			return h.Photos.Put(ctx, key, file.Header.Get("Content-Type"), src)
		},
		func(ctx context.Context) error { return h.Photos.Delete(ctx, key) },
	)
	saga.Add("sign image url",
		func(ctx context.Context) error {
			url, err := h.Photos.SignedURL(key, storage.PhotoURLTTL)
			if err != nil {
				return err
			}
			signedURL = url
			return nil
		},
		nil,
	)
	saga.Add("save image record",
		func(ctx context.Context) error {
			img.ImageURL = signedURL
			return h.Repo.CreateImage(ctx, img)
		},
		nil,
	)

	if err := saga.Run(c.Request.Context()); err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%s failed", stepErr.Step)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusCreated, img)
}

type updateImageReq struct {
	DisplayOrder *int  `json:"display_order"`
	IsPrimary    *bool `json:"is_primary"`
}

func (h *Handler) updateImage(c *gin.Context) {
	var req updateImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id := c.Param("id")

	// promoting to primary goes through the sibling-unset path
	if req.IsPrimary != nil && *req.IsPrimary {
		img, err := h.Repo.GetImage(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
			return
		}
		if img == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if err := h.Repo.SetPrimaryImage(c.Request.Context(), id, img.VariantID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		req.IsPrimary = nil
	}

	ok, err := h.Repo.UpdateImage(c.Request.Context(), id, ImagePatch{
		DisplayOrder: req.DisplayOrder,
		IsPrimary:    req.IsPrimary,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	img, err := h.Repo.GetImage(c.Request.Context(), id)
	if err != nil || img == nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *Handler) setPrimaryImage(c *gin.Context) {
	id := c.Param("id")
	img, err := h.Repo.GetImage(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.Repo.SetPrimaryImage(c.Request.Context(), id, img.VariantID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "set primary failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "primary set"})
}

func (h *Handler) deleteImage(c *gin.Context) {
	img, err := h.Repo.DeleteImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.removeStoredImage(c.Request.Context(), img.ImageURL)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) removeStoredImage(ctx context.Context, imageURL string) {
	if h.Photos == nil {
		return
	}
	key := storage.KeyFromURL(imageURL, "variant-images")
	if key == "" {
		return
	}
	if err := h.Photos.Delete(ctx, key); err != nil {
		h.Log.Warn("stored image delete failed", zap.String("key", key), zap.Error(err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
