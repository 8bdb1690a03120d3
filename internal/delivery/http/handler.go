package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefixlens/backend/internal/domain"
	"github.com/prefixlens/backend/internal/usecase"
)

// Clusterer groups a product list into common-string views
type Clusterer interface {
	ClusterProducts(ctx context.Context, products []domain.Product) (*domain.ClusterResult, error)
}

// ClusterRequest is the body of POST /api/v1/cluster
type ClusterRequest struct {
	Products []domain.Product `json:"products" binding:"dive"`
}

// PrefixRequest is the body of POST /api/v1/prefix
type PrefixRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	clusterer Clusterer
}

// NewHandler creates a new HTTP handler
func NewHandler(clusterer Clusterer) *Handler {
	return &Handler{clusterer: clusterer}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "prefixlens-backend",
		"version": "1.0.0",
	})
}

// Cluster groups the posted products and returns the annotated, grouped and expanded views
func (h *Handler) Cluster(c *gin.Context) {
	if h.clusterer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "clustering service not configured"})
		return
	}

	var req ClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.clusterer.ClusterProducts(c.Request.Context(), req.Products)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[HTTP] cluster failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clustering failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CommonPrefix returns the shared leading tokens of two names
func (h *Handler) CommonPrefix(c *gin.Context) {
	var req PrefixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commonString": usecase.CommonPrefixTokens(req.A, req.B),
	})
}
