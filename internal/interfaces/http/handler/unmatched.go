package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/application/importer"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/dto"
)

// UnmatchedHandler handles unmatched model registry API endpoints
type UnmatchedHandler struct {
	BaseHandler
	unmatched *importer.UnmatchedService
}

// NewUnmatchedHandler creates a new UnmatchedHandler
func NewUnmatchedHandler(unmatched *importer.UnmatchedService) *UnmatchedHandler {
	return &UnmatchedHandler{unmatched: unmatched}
}

// AssignUnmatchedProductRequest represents a request to resolve an
// unmatched model to a product
type AssignUnmatchedProductRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// UnmatchedResponse represents an unmatched model entry in API responses
type UnmatchedResponse struct {
	ID          string  `json:"id"`
	SupplierID  string  `json:"supplier_id"`
	ModelNo     string  `json:"model_no"`
	ProductCode string  `json:"product_code,omitempty"`
	ProductID   *string `json:"product_id,omitempty"`
	Count       int     `json:"count"`
}

func toUnmatchedResponse(e *mapping.UnmatchedModelEntry) UnmatchedResponse {
	resp := UnmatchedResponse{
		ID:          e.ID.String(),
		SupplierID:  e.SupplierID.String(),
		ModelNo:     e.ModelNo,
		ProductCode: e.ProductCode,
		Count:       e.Count,
	}
	if e.ProductID != nil {
		id := e.ProductID.String()
		resp.ProductID = &id
	}
	return resp
}

// List godoc
// @Summary  List unmatched models
// @Tags     unmatched
// @Success  200 {object} dto.Response{data=[]UnmatchedResponse}
// @Router   /import/unmatched [get]
func (h *UnmatchedHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()
	if supplierParam := c.Query("supplier_id"); supplierParam != "" {
		supplierID, err := uuid.Parse(supplierParam)
		if err != nil {
			h.BadRequest(c, "Invalid supplier ID")
			return
		}
		filter.Filters["supplier_id"] = supplierID
	}

	page, err := h.unmatched.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]UnmatchedResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toUnmatchedResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Page, page.PageSize, int(page.Total))
}

// GetByID godoc
// @Summary  Get an unmatched model entry with its stored rows
// @Tags     unmatched
// @Param    id path string true "Entry ID"
// @Success  200 {object} dto.Response{data=UnmatchedResponse}
// @Router   /import/unmatched/{id} [get]
func (h *UnmatchedHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.unmatched.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUnmatchedResponse(entry))
}

// AssignProduct godoc
// @Summary  Resolve an unmatched model to a product for future imports
// @Tags     unmatched
// @Param    id path string true "Entry ID"
// @Param    request body AssignUnmatchedProductRequest true "Product assignment request"
// @Success  204
// @Router   /import/unmatched/{id}/product [put]
func (h *UnmatchedHandler) AssignProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req AssignUnmatchedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.unmatched.AssignProduct(c.Request.Context(), id, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Link godoc
// @Summary  Link an unmatched model to a product and replay its stored rows
// @Tags     unmatched
// @Param    id path string true "Entry ID"
// @Param    request body AssignUnmatchedProductRequest true "Product link request"
// @Success  200 {object} dto.Response{data=importer.LinkResult}
// @Router   /import/unmatched/{id}/link [post]
func (h *UnmatchedHandler) Link(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req AssignUnmatchedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	result, err := h.unmatched.LinkToProduct(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
