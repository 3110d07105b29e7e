package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kubangab/supplier-information-import/internal/application/report"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles traceability report API endpoints
type ReportHandler struct {
	BaseHandler
	reports *report.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// EmailReportRequest represents a request to email a report
type EmailReportRequest struct {
	Recipient string `json:"recipient" binding:"required,email"`
}

// reportOptions builds report options from query parameters. "fields" is
// a comma-separated list of destination attribute names; unknown names
// are rejected.
func reportOptions(c *gin.Context) (report.Options, error) {
	opts := report.Options{
		SheetName:     c.Query("sheet"),
		IncludeCustom: c.Query("include_custom") == "true",
	}
	if fieldsParam := c.Query("fields"); fieldsParam != "" {
		for _, name := range strings.Split(fieldsParam, ",") {
			field := mapping.Field(strings.TrimSpace(name))
			if !field.IsKnown() {
				return opts, fmt.Errorf("unknown field %q", name)
			}
			opts.Fields = append(opts.Fields, field)
		}
	}
	return opts, nil
}

// Download godoc
// @Summary  Download the traceability report for a transfer
// @Tags     reports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param    id path string true "Transfer ID"
// @Param    sheet query string false "Target sheet name"
// @Param    fields query string false "Comma-separated attribute names to include"
// @Param    include_custom query bool false "Append custom value columns"
// @Success  200 {file} binary
// @Router   /receiving/transfers/{id}/report [get]
func (h *ReportHandler) Download(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}
	opts, err := reportOptions(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	content, err := h.reports.GenerateForTransfer(c.Request.Context(), id, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	fileName := fmt.Sprintf("product-info-%s.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, content)
}

// Email godoc
// @Summary  Email the traceability report for a transfer
// @Tags     reports
// @Param    id path string true "Transfer ID"
// @Param    request body EmailReportRequest true "Email request"
// @Success  204
// @Router   /receiving/transfers/{id}/report/email [post]
func (h *ReportHandler) Email(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req EmailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	opts, err := reportOptions(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.reports.EmailForTransfer(c.Request.Context(), id, req.Recipient, opts); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
