package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/domain/warehouse"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DefaultFields is the attribute column set emitted when the caller
// does not narrow the selection. Product and serial number always come
// first and are not part of this set.
var DefaultFields = []mapping.Field{
	mapping.FieldModelNo,
	mapping.FieldSupplierProductCode,
	mapping.FieldMAC1,
	mapping.FieldMAC2,
	mapping.FieldIMEI,
	mapping.FieldAppEUI,
	mapping.FieldAppKey,
	mapping.FieldAppKeyMode,
	mapping.FieldPN,
	mapping.FieldDevEUI,
	mapping.FieldRootPassword,
	mapping.FieldAdminPassword,
	mapping.FieldWiFiPassword,
	mapping.FieldWiFiSSID,
}

// Options narrows what a generated report contains
type Options struct {
	// SheetName overrides the configured worksheet name
	SheetName string
	// Fields selects which attribute columns appear; nil means DefaultFields
	Fields []mapping.Field
	// IncludeCustom adds one column per custom value name seen
	IncludeCustom bool
}

// Mailer delivers a generated report to a recipient
type Mailer interface {
	Send(ctx context.Context, recipient, subject string, attachment []byte, fileName string) error
}

// LogMailer is a Mailer that only records the send. It stands in where
// no mail transport is configured.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a logging mailer
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs the delivery instead of performing it
func (m *LogMailer) Send(ctx context.Context, recipient, subject string, attachment []byte, fileName string) error {
	logger.WithLogger(ctx, m.log).Info("report delivery skipped, no mail transport configured",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("file_name", fileName),
		zap.Int("attachment_bytes", len(attachment)))
	return nil
}

// Service builds supplier traceability spreadsheets for outbound
// transfers.
type Service struct {
	transfers    warehouse.TransferRepository
	infos        productinfo.Repository
	products     catalog.ProductRepository
	mailer       Mailer
	templatePath string
	sheetName    string
	log          *zap.Logger
}

// Option configures a report service
type Option func(*Service)

// WithTemplate renders reports into an xlsx template file instead of a
// blank workbook
func WithTemplate(path string) Option {
	return func(s *Service) {
		s.templatePath = path
	}
}

// WithSheetName overrides the default worksheet name
func WithSheetName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.sheetName = name
		}
	}
}

// NewService creates a report service
func NewService(
	transfers warehouse.TransferRepository,
	infos productinfo.Repository,
	products catalog.ProductRepository,
	mailer Mailer,
	log *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		transfers: transfers,
		infos:     infos,
		products:  products,
		mailer:    mailer,
		sheetName: "Product Info",
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateForTransfer builds the traceability spreadsheet for a
// transfer's serialized lines. Lines whose product only matches at the
// template level are included and logged; serials never announced by a
// supplier import are skipped with a warning.
func (s *Service) GenerateForTransfer(ctx context.Context, transferID uuid.UUID, opts Options) ([]byte, error) {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	log := logger.WithLogger(ctx, s.log).With(
		zap.String("transfer_id", transferID.String()),
		zap.String("reference", transfer.Reference))

	rows := make([]reportRow, 0, len(transfer.Lines))
	for _, line := range transfer.SerialLines() {
		info, err := s.infos.FindBySupplierAndSerial(ctx, transfer.SupplierID, line.LotSerial)
		if err != nil {
			if err == shared.ErrNotFound {
				log.Warn("serial not announced by any import, skipping",
					zap.String("serial_number", line.LotSerial))
				continue
			}
			return nil, err
		}

		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		matched, err := s.productMatches(ctx, info, product)
		if err != nil {
			return nil, err
		}
		if !matched {
			log.Warn("serial announced under a different product, skipping",
				zap.String("serial_number", line.LotSerial),
				zap.String("line_product_id", line.ProductID.String()))
			continue
		}

		rows = append(rows, reportRow{product: product, info: info})
	}

	data, err := s.render(rows, opts)
	if err != nil {
		return nil, err
	}

	log.Info("report generated",
		zap.Int("rows", len(rows)),
		zap.Int("bytes", len(data)))
	return data, nil
}

// EmailForTransfer generates the report and hands it to the mailer
func (s *Service) EmailForTransfer(ctx context.Context, transferID uuid.UUID, recipient string, opts Options) error {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return err
	}
	data, err := s.GenerateForTransfer(ctx, transferID, opts)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Product traceability report %s", transfer.Reference)
	fileName := fmt.Sprintf("product-info-%s.xlsx", transfer.Reference)
	return s.mailer.Send(ctx, recipient, subject, data, fileName)
}

type reportRow struct {
	product *catalog.Product
	info    *productinfo.IncomingProductInfo
}

// productMatches tolerates template-level matches: the announced unit
// counts for the line when its product is the line's product or another
// variant of the same template.
func (s *Service) productMatches(ctx context.Context, info *productinfo.IncomingProductInfo, product *catalog.Product) (bool, error) {
	if info.ProductID == nil {
		return false, nil
	}
	if *info.ProductID == product.ID {
		return true, nil
	}
	announced, err := s.products.FindByID(ctx, *info.ProductID)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if announced.TemplateCode != "" && announced.TemplateCode == product.TemplateCode {
		logger.WithLogger(ctx, s.log).Info("template-level product match on report line",
			zap.String("serial_number", info.SerialNumber),
			zap.String("template_code", product.TemplateCode))
		return true, nil
	}
	return false, nil
}

// render writes the rows into a workbook, either a blank one or the
// configured template.
func (s *Service) render(rows []reportRow, opts Options) ([]byte, error) {
	sheet := s.sheetName
	if opts.SheetName != "" {
		sheet = opts.SheetName
	}
	fields := opts.Fields
	if fields == nil {
		fields = DefaultFields
	}

	f, err := s.openWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	customNames := collectCustomNames(rows, opts.IncludeCustom)

	header := []interface{}{"Product", "Serial Number"}
	for _, field := range fields {
		header = append(header, field.Label())
	}
	for _, name := range customNames {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cells := []interface{}{row.product.Name, row.info.SerialNumber}
		for _, field := range fields {
			cells = append(cells, row.info.AttrValue(field))
		}
		custom := row.info.CustomValueMap()
		for _, name := range customNames {
			cells = append(cells, custom[name])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// openWorkbook opens the template when one is configured and readable,
// otherwise starts a blank workbook. The target sheet is created if the
// workbook does not carry it.
func (s *Service) openWorkbook(sheet string) (*excelize.File, error) {
	var f *excelize.File
	if s.templatePath != "" {
		if _, err := os.Stat(s.templatePath); err == nil {
			f, err = excelize.OpenFile(s.templatePath)
			if err != nil {
				return nil, err
			}
		}
	}
	if f == nil {
		f = excelize.NewFile()
	}

	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	if index, err = f.GetSheetIndex(sheet); err == nil {
		f.SetActiveSheet(index)
	}
	return f, nil
}

// collectCustomNames gathers every custom value name across the rows in
// a stable order.
func collectCustomNames(rows []reportRow, include bool) []string {
	if !include {
		return nil
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		for name := range row.info.CustomValueMap() {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
