package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// Products

func (r *Router) listProducts(c *gin.Context) {
	products, err := r.store.ListProducts(c.Request.Context())
	if err != nil {
		r.handleStoreError(c, err, "products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (r *Router) createProduct(c *gin.Context) {
	var req models.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	product, err := r.store.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		r.handleStoreError(c, err, "product")
		return
	}
	r.logger.Info("product created", logger.Int64("id", product.ID), logger.String("name", product.Name))
	c.JSON(http.StatusCreated, product)
}

func (r *Router) getProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	product, err := r.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		r.handleStoreError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (r *Router) updateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req models.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	product, err := r.store.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		r.handleStoreError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (r *Router) deleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := r.store.DeleteProduct(c.Request.Context(), id); err != nil {
		r.handleStoreError(c, err, "product")
		return
	}
	c.Status(http.StatusNoContent)
}

// Personas

func (r *Router) listPersonas(c *gin.Context) {
	personas, err := r.store.ListPersonas(c.Request.Context())
	if err != nil {
		r.handleStoreError(c, err, "personas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"personas": personas, "count": len(personas)})
}

func (r *Router) createPersona(c *gin.Context) {
	var req models.PersonaCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	persona, err := r.store.CreatePersona(c.Request.Context(), &req)
	if err != nil {
		r.handleStoreError(c, err, "persona")
		return
	}
	c.JSON(http.StatusCreated, persona)
}

func (r *Router) getPersona(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	persona, err := r.store.GetPersonaByID(c.Request.Context(), id)
	if err != nil {
		r.handleStoreError(c, err, "persona")
		return
	}
	c.JSON(http.StatusOK, persona)
}

func (r *Router) updatePersona(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req models.PersonaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	persona, err := r.store.UpdatePersona(c.Request.Context(), id, &req)
	if err != nil {
		r.handleStoreError(c, err, "persona")
		return
	}
	c.JSON(http.StatusOK, persona)
}

func (r *Router) deletePersona(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := r.store.DeletePersona(c.Request.Context(), id); err != nil {
		r.handleStoreError(c, err, "persona")
		return
	}
	c.Status(http.StatusNoContent)
}

// Templates

func (r *Router) listTemplates(c *gin.Context) {
	templates, err := r.store.ListTemplates(c.Request.Context())
	if err != nil {
		r.handleStoreError(c, err, "templates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

func (r *Router) createTemplate(c *gin.Context) {
	var req models.TemplateCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	tmpl, err := r.store.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		r.handleStoreError(c, err, "template")
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

func (r *Router) deleteTemplate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := r.store.DeleteTemplate(c.Request.Context(), id); err != nil {
		r.handleStoreError(c, err, "template")
		return
	}
	c.Status(http.StatusNoContent)
}
