package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watch-catalog/internal/service"
)

type BrandHandler struct {
	logger    *zap.Logger
	brandServ *service.BrandService
}

func NewBrandHandler(logger *zap.Logger, brandServ *service.BrandService) *BrandHandler {
	return &BrandHandler{logger: logger, brandServ: brandServ}
}

type brandRequest struct {
	BrandName string `json:"brandName"`
}

// ListBrands maneja GET /brands.
func (h *BrandHandler) ListBrands(c *gin.Context) {
	brands, err := h.brandServ.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "fetch brands", err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

// GetBrand maneja GET /brands/:id; devuelve también el miembro autenticado.
func (h *BrandHandler) GetBrand(c *gin.Context) {
	brand, err := h.brandServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "fetch brand", err)
		return
	}
	identity, _ := GetIdentity(c)
	c.JSON(http.StatusOK, gin.H{"brand": brand, "user": identity})
}

// ListBrandWatches maneja GET /brands/:id/watches.
func (h *BrandHandler) ListBrandWatches(c *gin.Context) {
	watches, err := h.brandServ.Watches(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "fetch watches for brand", err)
		return
	}
	c.JSON(http.StatusOK, watches)
}

func (h *BrandHandler) CreateBrand(c *gin.Context) {
	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create brand", err)
		return
	}
	brand, err := h.brandServ.Create(c.Request.Context(), req.BrandName)
	if err != nil {
		respondError(c, h.logger, "create brand", err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *BrandHandler) UpdateBrand(c *gin.Context) {
	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update brand", err)
		return
	}
	brand, err := h.brandServ.Update(c.Request.Context(), c.Param("id"), req.BrandName)
	if err != nil {
		respondError(c, h.logger, "update brand", err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) DeleteBrand(c *gin.Context) {
	if err := h.brandServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete brand", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted successfully"})
}
