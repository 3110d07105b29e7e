package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/application/importer"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/dto"
)

// ImportHandler handles spreadsheet import and analysis API endpoints
type ImportHandler struct {
	BaseHandler
	imports  *importer.ImportService
	analysis *importer.AnalysisService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imports *importer.ImportService, analysis *importer.AnalysisService) *ImportHandler {
	return &ImportHandler{imports: imports, analysis: analysis}
}

// CreateRulesRequest represents a request to create combination rules
// from analyzed value pairs
type CreateRulesRequest struct {
	Field1ID string               `json:"field1_id" binding:"required,uuid"`
	Field2ID string               `json:"field2_id" binding:"required,uuid"`
	Pairs    []importer.ValuePair `json:"pairs" binding:"required,min=1"`
}

// ProductInfoResponse represents one imported record in API responses
type ProductInfoResponse struct {
	ID                  string  `json:"id"`
	SupplierID          string  `json:"supplier_id"`
	SerialNumber        string  `json:"serial_number"`
	ProductID           *string `json:"product_id,omitempty"`
	ModelNo             string  `json:"model_no,omitempty"`
	SupplierProductCode string  `json:"supplier_product_code,omitempty"`
	State               string  `json:"state"`
	MAC1                string  `json:"mac1,omitempty"`
	MAC2                string  `json:"mac2,omitempty"`
	IMEI                string  `json:"imei,omitempty"`
	DevEUI              string  `json:"dev_eui,omitempty"`
	TransferID          *string `json:"transfer_id,omitempty"`
}

func toProductInfoResponse(info *productinfo.IncomingProductInfo) ProductInfoResponse {
	resp := ProductInfoResponse{
		ID:                  info.ID.String(),
		SupplierID:          info.SupplierID.String(),
		SerialNumber:        info.SerialNumber,
		ModelNo:             info.ModelNo,
		SupplierProductCode: info.SupplierProductCode,
		State:               string(info.State),
		MAC1:                info.MAC1,
		MAC2:                info.MAC2,
		IMEI:                info.IMEI,
		DevEUI:              info.DevEUI,
	}
	if info.ProductID != nil {
		id := info.ProductID.String()
		resp.ProductID = &id
	}
	if info.TransferID != nil {
		id := info.TransferID.String()
		resp.TransferID = &id
	}
	return resp
}

// Import godoc
// @Summary  Import a supplier spreadsheet using a configuration
// @Tags     import
// @Accept   multipart/form-data
// @Param    id path string true "Configuration ID"
// @Param    file formData file true "Supplier spreadsheet"
// @Success  200 {object} dto.Response{data=importer.ImportSummary}
// @Router   /import/configs/{id}/file [post]
func (h *ImportHandler) Import(c *gin.Context) {
	configID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	fileName, data, err := readUpload(c)
	if err != nil {
		h.BadRequest(c, "Missing or unreadable file upload")
		return
	}

	summary, err := h.imports.ImportFile(c.Request.Context(), configID, fileName, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Records godoc
// @Summary  List the imported records for a supplier
// @Tags     import
// @Param    id path string true "Supplier ID"
// @Param    state query string false "Filter by state (pending, received)"
// @Success  200 {object} dto.Response{data=[]ProductInfoResponse}
// @Router   /import/suppliers/{id}/records [get]
func (h *ImportHandler) Records(c *gin.Context) {
	supplierID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()
	if state := c.Query("state"); state != "" {
		filter.Filters["state"] = state
	}

	page, err := h.imports.Records(c.Request.Context(), supplierID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductInfoResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toProductInfoResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Page, page.PageSize, int(page.Total))
}

// Analyze godoc
// @Summary  Analyze a file for column value pairs not covered by any rule
// @Tags     import
// @Accept   multipart/form-data
// @Param    id path string true "Configuration ID"
// @Param    file formData file true "Supplier spreadsheet"
// @Param    field1_id formData string true "First mapping ID"
// @Param    field2_id formData string true "Second mapping ID"
// @Success  200 {object} dto.Response{data=importer.AnalysisReport}
// @Router   /import/configs/{id}/analysis [post]
func (h *ImportHandler) Analyze(c *gin.Context) {
	configID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	field1ID, err := uuid.Parse(c.PostForm("field1_id"))
	if err != nil {
		h.BadRequest(c, "Invalid field1 ID")
		return
	}
	field2ID, err := uuid.Parse(c.PostForm("field2_id"))
	if err != nil {
		h.BadRequest(c, "Invalid field2 ID")
		return
	}

	fileName, data, err := readUpload(c)
	if err != nil {
		h.BadRequest(c, "Missing or unreadable file upload")
		return
	}

	report, err := h.analysis.AnalyzeFile(c.Request.Context(), configID, fileName, data, field1ID, field2ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Plain-text rendering for operators working from the terminal
	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.Text())
		return
	}
	h.Success(c, report)
}

// CreateRules godoc
// @Summary  Create combination rules from analyzed value pairs
// @Tags     import
// @Param    id path string true "Configuration ID"
// @Param    request body CreateRulesRequest true "Rule creation request"
// @Success  201 {object} dto.Response
// @Router   /import/configs/{id}/analysis/rules [post]
func (h *ImportHandler) CreateRules(c *gin.Context) {
	configID, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	var req CreateRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	field1ID, err := uuid.Parse(req.Field1ID)
	if err != nil {
		h.BadRequest(c, "Invalid field1 ID")
		return
	}
	field2ID, err := uuid.Parse(req.Field2ID)
	if err != nil {
		h.BadRequest(c, "Invalid field2 ID")
		return
	}

	created, err := h.analysis.CreateRulesFromAnalysis(c.Request.Context(), configID, field1ID, field2ID, req.Pairs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"created": created})
}
