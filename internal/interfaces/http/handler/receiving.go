package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/application/receiving"
	"github.com/kubangab/supplier-information-import/internal/domain/warehouse"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/dto"
)

// ReceivingHandler handles incoming transfer API endpoints
type ReceivingHandler struct {
	BaseHandler
	receiving *receiving.Service
}

// NewReceivingHandler creates a new ReceivingHandler
func NewReceivingHandler(svc *receiving.Service) *ReceivingHandler {
	return &ReceivingHandler{receiving: svc}
}

// TransferLineRequest represents one requested line on a new transfer
type TransferLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	LotSerial string `json:"lot_serial"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

// CreateTransferRequest represents a request to create an incoming
// transfer
type CreateTransferRequest struct {
	Reference  string                `json:"reference" binding:"required,min=1,max=100"`
	SupplierID string                `json:"supplier_id" binding:"required,uuid"`
	Lines      []TransferLineRequest `json:"lines"`
}

// TransferLineResponse represents a transfer line in API responses
type TransferLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	LotSerial string `json:"lot_serial,omitempty"`
	Quantity  int    `json:"quantity"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID         string                 `json:"id"`
	Reference  string                 `json:"reference"`
	SupplierID string                 `json:"supplier_id"`
	Status     string                 `json:"status"`
	Lines      []TransferLineResponse `json:"lines"`
	Version    int                    `json:"version"`
}

func toTransferResponse(t *warehouse.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:         t.ID.String(),
		Reference:  t.Reference,
		SupplierID: t.SupplierID.String(),
		Status:     string(t.Status),
		Lines:      make([]TransferLineResponse, 0, len(t.Lines)),
		Version:    t.Version,
	}
	for i := range t.Lines {
		line := &t.Lines[i]
		resp.Lines = append(resp.Lines, TransferLineResponse{
			ID:        line.ID.String(),
			ProductID: line.ProductID.String(),
			LotSerial: line.LotSerial,
			Quantity:  line.Quantity,
		})
	}
	return resp
}

// Create godoc
// @Summary  Create an incoming transfer
// @Tags     receiving
// @Param    request body CreateTransferRequest true "Transfer creation request"
// @Success  201 {object} dto.Response{data=TransferResponse}
// @Router   /receiving/transfers [post]
func (h *ReceivingHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	lines := make([]receiving.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID")
			return
		}
		quantity := line.Quantity
		if quantity == 0 {
			quantity = 1
		}
		lines = append(lines, receiving.LineInput{
			ProductID: productID,
			LotSerial: line.LotSerial,
			Quantity:  quantity,
		})
	}

	transfer, err := h.receiving.CreateTransfer(c.Request.Context(), req.Reference, supplierID, lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTransferResponse(transfer))
}

// GetByID godoc
// @Summary  Get a transfer with its lines
// @Tags     receiving
// @Param    id path string true "Transfer ID"
// @Success  200 {object} dto.Response{data=TransferResponse}
// @Router   /receiving/transfers/{id} [get]
func (h *ReceivingHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.receiving.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponse(transfer))
}

// List godoc
// @Summary  List transfers
// @Tags     receiving
// @Param    status query string false "Filter by status (draft, ready, done)"
// @Success  200 {object} dto.Response{data=[]TransferResponse}
// @Router   /receiving/transfers [get]
func (h *ReceivingHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.receiving.ListTransfers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]TransferResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toTransferResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Page, page.PageSize, int(page.Total))
}

// MarkReady godoc
// @Summary  Mark a draft transfer ready for receipt
// @Tags     receiving
// @Param    id path string true "Transfer ID"
// @Success  200 {object} dto.Response{data=TransferResponse}
// @Router   /receiving/transfers/{id}/ready [post]
func (h *ReceivingHandler) MarkReady(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.receiving.MarkReady(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransferResponse(transfer))
}

// Process godoc
// @Summary  Validate a transfer's serials against the imported records
// @Tags     receiving
// @Param    id path string true "Transfer ID"
// @Success  200 {object} dto.Response{data=receiving.Result}
// @Router   /receiving/transfers/{id}/process [post]
func (h *ReceivingHandler) Process(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	result, err := h.receiving.ProcessTransfer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// FillFromPending godoc
// @Summary  Add lines for every pending imported unit of the supplier
// @Tags     receiving
// @Param    id path string true "Transfer ID"
// @Success  200 {object} dto.Response{data=receiving.FillResult}
// @Router   /receiving/transfers/{id}/fill-from-pending [post]
func (h *ReceivingHandler) FillFromPending(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	result, err := h.receiving.FillFromPending(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
