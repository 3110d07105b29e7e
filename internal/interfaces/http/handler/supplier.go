package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/kubangab/supplier-information-import/internal/application/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/dto"
)

// SupplierHandler handles supplier-related API endpoints
type SupplierHandler struct {
	BaseHandler
	suppliers *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(suppliers *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Code  string `json:"code" binding:"required,min=1,max=50"`
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
}

// CreateContactRequest represents a request to add a contact entity
// under a parent supplier
type CreateContactRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// UpdateSupplierRequest represents a request to rename a supplier
type UpdateSupplierRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	ParentID *string `json:"parent_id,omitempty"`
	Email    string  `json:"email,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Version  int     `json:"version"`
}

func toSupplierResponse(s *partner.Supplier) SupplierResponse {
	resp := SupplierResponse{
		ID:      s.ID.String(),
		Code:    s.Code,
		Name:    s.Name,
		Status:  string(s.Status),
		Email:   s.Email,
		Phone:   s.Phone,
		Version: s.Version,
	}
	if s.ParentID != nil {
		id := s.ParentID.String()
		resp.ParentID = &id
	}
	return resp
}

// Create godoc
// @Summary  Create a new supplier
// @Tags     suppliers
// @Param    request body CreateSupplierRequest true "Supplier creation request"
// @Success  201 {object} dto.Response{data=SupplierResponse}
// @Router   /partner/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier, err := h.suppliers.Create(c.Request.Context(), req.Code, req.Name, req.Email, req.Phone)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSupplierResponse(supplier))
}

// CreateContact godoc
// @Summary  Add a contact entity under a parent supplier
// @Tags     suppliers
// @Param    id path string true "Parent supplier ID"
// @Param    request body CreateContactRequest true "Contact creation request"
// @Success  201 {object} dto.Response{data=SupplierResponse}
// @Router   /partner/suppliers/{id}/contacts [post]
func (h *SupplierHandler) CreateContact(c *gin.Context) {
	parentID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.suppliers.CreateContact(c.Request.Context(), parentID, req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSupplierResponse(contact))
}

// GetByID godoc
// @Summary  Get a supplier by ID
// @Tags     suppliers
// @Param    id path string true "Supplier ID"
// @Success  200 {object} dto.Response{data=SupplierResponse}
// @Router   /partner/suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.suppliers.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

// Group godoc
// @Summary  Get a supplier's group, parent company first
// @Tags     suppliers
// @Param    id path string true "Supplier ID"
// @Success  200 {object} dto.Response{data=[]SupplierResponse}
// @Router   /partner/suppliers/{id}/group [get]
func (h *SupplierHandler) Group(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	group, err := h.suppliers.Group(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SupplierResponse, 0, len(group))
	for i := range group {
		responses = append(responses, toSupplierResponse(&group[i]))
	}
	h.Success(c, responses)
}

// List godoc
// @Summary  List suppliers
// @Tags     suppliers
// @Success  200 {object} dto.Response{data=[]SupplierResponse}
// @Router   /partner/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()

	suppliers, err := h.suppliers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		responses = append(responses, toSupplierResponse(&suppliers[i]))
	}
	h.SuccessWithMeta(c, responses, filter.Page, filter.PageSize, len(responses))
}

// Update godoc
// @Summary  Rename a supplier
// @Tags     suppliers
// @Param    id path string true "Supplier ID"
// @Param    request body UpdateSupplierRequest true "Supplier update request"
// @Success  200 {object} dto.Response{data=SupplierResponse}
// @Router   /partner/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier, err := h.suppliers.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

// Delete godoc
// @Summary  Delete a supplier
// @Tags     suppliers
// @Param    id path string true "Supplier ID"
// @Success  204
// @Router   /partner/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	if err := h.suppliers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
