// internal/api/handlers/product_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

type ProductHandler struct {
	products  *service.ProductService
	countries *service.CountryService
}

func NewProductHandler(products *service.ProductService, countries *service.CountryService) *ProductHandler {
	return &ProductHandler{products: products, countries: countries}
}

// List returns products; paused ones only when ?include_paused=true.
func (h *ProductHandler) List(c *gin.Context) {
	includePaused := c.Query("include_paused") == "true"

	products, err := h.products.List(c.Request.Context(), includePaused)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.products.Create(c.Request.Context(), &p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "product": p})
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.ID = c.Param("id")

	if err := h.products.Update(c.Request.Context(), &p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "product": p})
}

func (h *ProductHandler) Pause(c *gin.Context) {
	if err := h.products.SetPaused(c.Request.Context(), c.Param("id"), true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ProductHandler) Resume(c *gin.Context) {
	if err := h.products.SetPaused(c.Request.Context(), c.Param("id"), false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a product and all of its dependent records.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ProductHandler) ListCountries(c *gin.Context) {
	var (
		countries []*domain.Country
		err       error
	)
	if c.Query("markets_only") == "true" {
		countries, err = h.countries.Markets(c.Request.Context())
	} else {
		countries, err = h.countries.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

func (h *ProductHandler) AddCountry(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	country, err := h.countries.Add(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "country": country})
}

func (h *ProductHandler) DeleteCountry(c *gin.Context) {
	if err := h.countries.Delete(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
