package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/kubangab/supplier-information-import/internal/application/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ProductHandler handles catalog product API endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code          string `json:"code" binding:"required,min=1,max=50"`
	Name          string `json:"name" binding:"required,min=1,max=200"`
	Description   string `json:"description"`
	SerialTracked bool   `json:"serial_tracked"`
}

// SetTemplateCodeRequest represents a request to group a product under
// a variant template
type SetTemplateCodeRequest struct {
	TemplateCode string `json:"template_code" binding:"required,min=1,max=50"`
}

// SetPurchasePriceRequest represents a request to update the supplier
// cost of a product
type SetPurchasePriceRequest struct {
	PurchasePrice string `json:"purchase_price" binding:"required"`
}

// AssociateSupplierRequest represents a request to record the code a
// supplier uses for a product
type AssociateSupplierRequest struct {
	SupplierID   string `json:"supplier_id" binding:"required,uuid"`
	SupplierCode string `json:"supplier_code" binding:"required,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Tracking      string `json:"tracking"`
	TemplateCode  string `json:"template_code,omitempty"`
	PurchasePrice string `json:"purchase_price"`
	Version       int    `json:"version"`
}

// SupplierProductResponse represents a supplier code association
type SupplierProductResponse struct {
	ID           string `json:"id"`
	SupplierID   string `json:"supplier_id"`
	ProductID    string `json:"product_id"`
	SupplierCode string `json:"supplier_code"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		Tracking:      string(p.Tracking),
		TemplateCode:  p.TemplateCode,
		PurchasePrice: p.PurchasePrice.String(),
		Version:       p.Version,
	}
}

func toSupplierProductResponse(sp *catalog.SupplierProduct) SupplierProductResponse {
	return SupplierProductResponse{
		ID:           sp.ID.String(),
		SupplierID:   sp.SupplierID.String(),
		ProductID:    sp.ProductID.String(),
		SupplierCode: sp.ProductCode,
	}
}

// Create godoc
// @Summary  Create a new product
// @Tags     products
// @Param    request body CreateProductRequest true "Product creation request"
// @Success  201 {object} dto.Response{data=ProductResponse}
// @Router   /catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.Create(c.Request.Context(), req.Code, req.Name, req.Description, req.SerialTracked)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// GetByID godoc
// @Summary  Get a product by ID
// @Tags     products
// @Param    id path string true "Product ID"
// @Success  200 {object} dto.Response{data=ProductResponse}
// @Router   /catalog/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// List godoc
// @Summary  List products
// @Tags     products
// @Success  200 {object} dto.Response{data=[]ProductResponse}
// @Router   /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}
	h.SuccessWithMeta(c, responses, filter.Page, filter.PageSize, len(responses))
}

// SetTemplateCode godoc
// @Summary  Group a product under a variant template
// @Tags     products
// @Param    id path string true "Product ID"
// @Param    request body SetTemplateCodeRequest true "Template code request"
// @Success  200 {object} dto.Response{data=ProductResponse}
// @Router   /catalog/products/{id}/template-code [put]
func (h *ProductHandler) SetTemplateCode(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req SetTemplateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.SetTemplateCode(c.Request.Context(), id, req.TemplateCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// SetPurchasePrice godoc
// @Summary  Update the supplier cost of a product
// @Tags     products
// @Param    id path string true "Product ID"
// @Param    request body SetPurchasePriceRequest true "Purchase price request"
// @Success  200 {object} dto.Response{data=ProductResponse}
// @Router   /catalog/products/{id}/purchase-price [put]
func (h *ProductHandler) SetPurchasePrice(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req SetPurchasePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	price, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil {
		h.BadRequest(c, "Invalid purchase price")
		return
	}

	product, err := h.products.SetPurchasePrice(c.Request.Context(), id, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// Delete godoc
// @Summary  Delete a product
// @Tags     products
// @Param    id path string true "Product ID"
// @Success  204
// @Router   /catalog/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AssociateSupplier godoc
// @Summary  Record the code a supplier uses for a product
// @Tags     products
// @Param    id path string true "Product ID"
// @Param    request body AssociateSupplierRequest true "Supplier association request"
// @Success  200 {object} dto.Response{data=SupplierProductResponse}
// @Router   /catalog/products/{id}/suppliers [post]
func (h *ProductHandler) AssociateSupplier(c *gin.Context) {
	productID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req AssociateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	sp, err := h.products.AssociateSupplier(c.Request.Context(), productID, supplierID, req.SupplierCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierProductResponse(sp))
}

// ListSupplierCodes godoc
// @Summary  List the supplier codes known for a product
// @Tags     products
// @Param    id path string true "Product ID"
// @Success  200 {object} dto.Response{data=[]SupplierProductResponse}
// @Router   /catalog/products/{id}/suppliers [get]
func (h *ProductHandler) ListSupplierCodes(c *gin.Context) {
	productID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	associations, err := h.products.SupplierAssociations(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SupplierProductResponse, 0, len(associations))
	for i := range associations {
		responses = append(responses, toSupplierProductResponse(&associations[i]))
	}
	h.Success(c, responses)
}
