package handler

import (
	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/gin-gonic/gin"
)

// ModifierHandler manages the tax and discount catalog of sales areas
type ModifierHandler struct {
	BaseHandler
	modifiers *pricingapp.ModifierService
}

// NewModifierHandler creates a new ModifierHandler
func NewModifierHandler(modifiers *pricingapp.ModifierService) *ModifierHandler {
	return &ModifierHandler{modifiers: modifiers}
}

// List returns the modifiers of a sales area
// GET /api/v1/sales-areas/:area_id/modifiers
func (h *ModifierHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	areaID, ok := h.uuidParam(c, "area_id")
	if !ok {
		return
	}

	list, err := h.modifiers.ListForArea(c.Request.Context(), tenantID, areaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, list, len(list))
}

// Create adds a modifier to a sales area
// POST /api/v1/sales-areas/:area_id/modifiers
func (h *ModifierHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	areaID, ok := h.uuidParam(c, "area_id")
	if !ok {
		return
	}

	var req pricingapp.ModifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.modifiers.Create(c.Request.Context(), tenantID, areaID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Update replaces the configuration of a modifier
// PUT /api/v1/sales-areas/:area_id/modifiers/:id
func (h *ModifierHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	areaID, ok := h.uuidParam(c, "area_id")
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req pricingapp.ModifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.modifiers.Update(c.Request.Context(), tenantID, areaID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a modifier
// DELETE /api/v1/sales-areas/:area_id/modifiers/:id
func (h *ModifierHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	areaID, ok := h.uuidParam(c, "area_id")
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.modifiers.Delete(c.Request.Context(), tenantID, areaID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
