package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/application/importer"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/interfaces/http/dto"
)

// ConfigHandler handles import configuration API endpoints
type ConfigHandler struct {
	BaseHandler
	configs *importer.ConfigService
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(configs *importer.ConfigService) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// CreateConfigRequest represents a request to create an import
// configuration
type CreateConfigRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200"`
	SupplierID string `json:"supplier_id" binding:"required,uuid"`
	FileType   string `json:"file_type" binding:"required,oneof=csv excel"`
}

// SetDestinationRequest represents a request to repoint a column mapping
type SetDestinationRequest struct {
	Destination string `json:"destination" binding:"required"`
	Label       string `json:"label"`
}

// AddRuleRequest represents a request to add a combination rule
type AddRuleRequest struct {
	Name               string  `json:"name" binding:"required,min=1,max=200"`
	Field1ID           string  `json:"field1_id" binding:"required,uuid"`
	Field2ID           string  `json:"field2_id" binding:"required,uuid"`
	Value1             string  `json:"value1" binding:"required"`
	Value2             string  `json:"value2" binding:"required"`
	CombinationPattern string  `json:"combination_pattern"`
	RegexPattern       string  `json:"regex_pattern"`
	ProductID          *string `json:"product_id" binding:"omitempty,uuid"`
}

// AssignRuleProductRequest represents a request to point a rule at a
// product. A null product ID clears the assignment.
type AssignRuleProductRequest struct {
	ProductID *string `json:"product_id" binding:"omitempty,uuid"`
}

// MappingResponse represents a column mapping in API responses
type MappingResponse struct {
	ID              string `json:"id"`
	SourceColumn    string `json:"source_column"`
	Destination     string `json:"destination"`
	CustomFieldName string `json:"custom_field_name,omitempty"`
	Label           string `json:"label"`
	Position        int    `json:"position"`
}

// RuleResponse represents a combination rule in API responses
type RuleResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Field1ID           string  `json:"field1_id"`
	Field2ID           string  `json:"field2_id"`
	Value1             string  `json:"value1"`
	Value2             string  `json:"value2"`
	CombinationPattern string  `json:"combination_pattern,omitempty"`
	RegexPattern       string  `json:"regex_pattern,omitempty"`
	ProductID          *string `json:"product_id,omitempty"`
	Position           int     `json:"position"`
	UsageCount         int     `json:"usage_count"`
}

// ConfigResponse represents an import configuration in API responses
type ConfigResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	SupplierID     string            `json:"supplier_id"`
	FileType       string            `json:"file_type"`
	SampleFileName string            `json:"sample_file_name,omitempty"`
	Mappings       []MappingResponse `json:"mappings"`
	Rules          []RuleResponse    `json:"rules"`
	Version        int               `json:"version"`
}

func toRuleResponse(r *mapping.CombinationRule) RuleResponse {
	resp := RuleResponse{
		ID:                 r.ID.String(),
		Name:               r.Name,
		Field1ID:           r.Field1ID.String(),
		Field2ID:           r.Field2ID.String(),
		Value1:             r.Value1,
		Value2:             r.Value2,
		CombinationPattern: r.CombinationPattern,
		RegexPattern:       r.RegexPattern,
		Position:           r.Position,
		UsageCount:         r.UsageCount,
	}
	if r.ProductID != nil {
		id := r.ProductID.String()
		resp.ProductID = &id
	}
	return resp
}

func toConfigResponse(cfg *mapping.ImportConfig) ConfigResponse {
	resp := ConfigResponse{
		ID:             cfg.ID.String(),
		Name:           cfg.Name,
		SupplierID:     cfg.SupplierID.String(),
		FileType:       string(cfg.FileType),
		SampleFileName: cfg.SampleFileName,
		Mappings:       make([]MappingResponse, 0, len(cfg.Mappings)),
		Rules:          make([]RuleResponse, 0, len(cfg.Rules)),
		Version:        cfg.Version,
	}
	for i := range cfg.Mappings {
		m := &cfg.Mappings[i]
		resp.Mappings = append(resp.Mappings, MappingResponse{
			ID:              m.ID.String(),
			SourceColumn:    m.SourceColumn,
			Destination:     string(m.Destination),
			CustomFieldName: m.CustomFieldName,
			Label:           m.Label,
			Position:        m.Position,
		})
	}
	for i := range cfg.Rules {
		resp.Rules = append(resp.Rules, toRuleResponse(&cfg.Rules[i]))
	}
	return resp
}

// Create godoc
// @Summary  Create an import configuration for a supplier
// @Tags     import-configs
// @Param    request body CreateConfigRequest true "Configuration creation request"
// @Success  201 {object} dto.Response{data=ConfigResponse}
// @Router   /import/configs [post]
func (h *ConfigHandler) Create(c *gin.Context) {
	var req CreateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	cfg, err := h.configs.Create(c.Request.Context(), req.Name, supplierID, mapping.FileType(req.FileType))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toConfigResponse(cfg))
}

// GetByID godoc
// @Summary  Get an import configuration
// @Tags     import-configs
// @Param    id path string true "Configuration ID"
// @Success  200 {object} dto.Response{data=ConfigResponse}
// @Router   /import/configs/{id} [get]
func (h *ConfigHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	cfg, err := h.configs.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConfigResponse(cfg))
}

// List godoc
// @Summary  List import configurations
// @Tags     import-configs
// @Param    supplier_id query string false "Filter by supplier"
// @Success  200 {object} dto.Response{data=[]ConfigResponse}
// @Router   /import/configs [get]
func (h *ConfigHandler) List(c *gin.Context) {
	if supplierParam := c.Query("supplier_id"); supplierParam != "" {
		supplierID, err := uuid.Parse(supplierParam)
		if err != nil {
			h.BadRequest(c, "Invalid supplier ID")
			return
		}
		configs, err := h.configs.ListBySupplier(c.Request.Context(), supplierID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		responses := make([]ConfigResponse, 0, len(configs))
		for i := range configs {
			responses = append(responses, toConfigResponse(&configs[i]))
		}
		h.Success(c, responses)
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()

	page, err := h.configs.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ConfigResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toConfigResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Page, page.PageSize, int(page.Total))
}

// Delete godoc
// @Summary  Delete an import configuration
// @Tags     import-configs
// @Param    id path string true "Configuration ID"
// @Success  204
// @Router   /import/configs/{id} [delete]
func (h *ConfigHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	if err := h.configs.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadSample godoc
// @Summary  Load a sample file and derive column mappings from its headers
// @Tags     import-configs
// @Accept   multipart/form-data
// @Param    id path string true "Configuration ID"
// @Param    file formData file true "Sample spreadsheet"
// @Success  200 {object} dto.Response{data=importer.SampleResult}
// @Router   /import/configs/{id}/sample [post]
func (h *ConfigHandler) UploadSample(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	fileName, data, err := readUpload(c)
	if err != nil {
		h.BadRequest(c, "Missing or unreadable file upload")
		return
	}

	result, err := h.configs.LoadSample(c.Request.Context(), id, fileName, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SetMappingDestination godoc
// @Summary  Repoint a derived column mapping at a different destination
// @Tags     import-configs
// @Param    id path string true "Configuration ID"
// @Param    mapping_id path string true "Mapping ID"
// @Param    request body SetDestinationRequest true "Destination request"
// @Success  200 {object} dto.Response{data=ConfigResponse}
// @Router   /import/configs/{id}/mappings/{mapping_id} [put]
func (h *ConfigHandler) SetMappingDestination(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}
	mappingID, err := parseID(c, "mapping_id")
	if err != nil {
		h.BadRequest(c, "Invalid mapping ID")
		return
	}

	var req SetDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.configs.SetMappingDestination(c.Request.Context(), id, mappingID, mapping.Field(req.Destination), req.Label)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConfigResponse(cfg))
}

// AddRule godoc
// @Summary  Add a combination rule to a configuration
// @Tags     import-configs
// @Param    id path string true "Configuration ID"
// @Param    request body AddRuleRequest true "Rule creation request"
// @Success  201 {object} dto.Response{data=RuleResponse}
// @Router   /import/configs/{id}/rules [post]
func (h *ConfigHandler) AddRule(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}

	var req AddRuleRequest
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

	input := importer.RuleInput{
		Name:               req.Name,
		Field1ID:           field1ID,
		Field2ID:           field2ID,
		Value1:             req.Value1,
		Value2:             req.Value2,
		CombinationPattern: req.CombinationPattern,
		RegexPattern:       req.RegexPattern,
	}
	if req.ProductID != nil {
		productID, err := uuid.Parse(*req.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID")
			return
		}
		input.ProductID = &productID
	}

	rule, err := h.configs.AddRule(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRuleResponse(rule))
}

// AssignRuleProduct godoc
// @Summary  Point a combination rule at a product
// @Tags     import-configs
// @Param    id path string true "Configuration ID"
// @Param    rule_id path string true "Rule ID"
// @Param    request body AssignRuleProductRequest true "Product assignment request"
// @Success  204
// @Router   /import/configs/{id}/rules/{rule_id}/product [put]
func (h *ConfigHandler) AssignRuleProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}
	ruleID, err := parseID(c, "rule_id")
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	var req AssignRuleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var productID *uuid.UUID
	if req.ProductID != nil {
		id, err := uuid.Parse(*req.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID")
			return
		}
		productID = &id
	}

	if err := h.configs.AssignRuleProduct(c.Request.Context(), id, ruleID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
