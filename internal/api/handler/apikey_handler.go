package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MK023/TorinoParking/internal/domain"
	"github.com/MK023/TorinoParking/internal/repository"
	"github.com/MK023/TorinoParking/internal/service"

	"github.com/gin-gonic/gin"
)

type ApiKeyHandler struct {
	apiKeyService *service.ApiKeyService
}

func NewApiKeyHandler(ks *service.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{apiKeyService: ks}
}

// POST /admin/keys
func (h *ApiKeyHandler) CreateKey(c *gin.Context) {
	var dto domain.CreateKeyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if dto.Tier == "" {
		dto.Tier = domain.TierAuthenticated
	}
	if dto.Tier != domain.TierAuthenticated && dto.Tier != domain.TierPremium {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tier must be 'authenticated' or 'premium'"})
		return
	}

	rawKey, key, err := h.apiKeyService.Create(c.Request.Context(), dto.Name, dto.Tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create API key"})
		return
	}
	c.JSON(http.StatusCreated, domain.CreateKeyResponse{ApiKey: *key, RawKey: rawKey})
}

// GET /admin/keys
func (h *ApiKeyHandler) ListKeys(c *gin.Context) {
	keys, err := h.apiKeyService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list API keys"})
		return
	}
	if keys == nil {
		keys = []domain.ApiKey{}
	}
	c.JSON(http.StatusOK, keys)
}

// DELETE /admin/keys/:id
func (h *ApiKeyHandler) RevokeKey(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key ID"})
		return
	}

	if err := h.apiKeyService.Revoke(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke API key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked", "key_id": id})
}
