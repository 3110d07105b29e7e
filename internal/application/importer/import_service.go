package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/fileparse"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ImportSummary is the outcome of one file import
type ImportSummary struct {
	TotalRows          int                  `json:"total_rows"`
	Created            int                  `json:"created"`
	Updated            int                  `json:"updated"`
	Unmatched          int                  `json:"unmatched"`
	RuleWithoutProduct int                  `json:"rule_without_product"`
	ErrorRows          int                  `json:"error_rows"`
	Errors             []fileparse.RowError `json:"errors,omitempty"`
	IsTruncated        bool                 `json:"is_truncated,omitempty"`
	TotalErrors        int                  `json:"total_errors,omitempty"`
}

// ImportService streams supplier files through column mapping and
// product resolution, upserting incoming product records in chunks.
type ImportService struct {
	configs   mapping.ImportConfigRepository
	infos     productinfo.Repository
	resolver  *Resolver
	chunkSize int
	maxErrors int
	maxRows   int
	log       *zap.Logger
}

// ImportOption configures an ImportService
type ImportOption func(*ImportService)

// WithChunkSize overrides the number of rows persisted per batch
func WithChunkSize(size int) ImportOption {
	return func(s *ImportService) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithMaxErrors caps the number of row errors kept in the summary
func WithMaxErrors(max int) ImportOption {
	return func(s *ImportService) {
		if max > 0 {
			s.maxErrors = max
		}
	}
}

// WithMaxRows caps the number of data rows accepted per file
func WithMaxRows(max int) ImportOption {
	return func(s *ImportService) {
		if max > 0 {
			s.maxRows = max
		}
	}
}

// NewImportService creates an import service
func NewImportService(
	configs mapping.ImportConfigRepository,
	infos productinfo.Repository,
	resolver *Resolver,
	log *zap.Logger,
	opts ...ImportOption,
) *ImportService {
	s := &ImportService{
		configs:   configs,
		infos:     infos,
		resolver:  resolver,
		chunkSize: 1000,
		maxErrors: 100,
		maxRows:   100000,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Records lists the imported records for a supplier
func (s *ImportService) Records(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (shared.Paginated[productinfo.IncomingProductInfo], error) {
	return s.infos.FindBySupplier(ctx, supplierID, filter)
}

// ImportFile parses the file, maps every row through the configuration
// and resolves it to a product. Records are persisted in chunks so a
// failure late in a large file keeps the progress already made. Row
// failures never abort the batch.
func (s *ImportService) ImportFile(ctx context.Context, configID uuid.UUID, fileName string, data []byte) (*ImportSummary, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}

	log := logger.WithLogger(ctx, s.log).With(
		zap.String("config_id", configID.String()),
		zap.String("file_name", fileName),
	)

	fileType := fileparse.SniffType(fileName, data)
	parser, err := fileparse.NewParser(fileType, data)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	summary := &ImportSummary{}
	rowErrors := fileparse.NewErrorCollection(s.maxErrors)
	chunk := newChunk(s.chunkSize)

	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors.Add(fileparse.NewRowError(summary.TotalRows+2, "", fileparse.ErrCodeParsing, err.Error()))
			break
		}
		if row.IsEmpty() {
			continue
		}
		summary.TotalRows++
		if s.maxRows > 0 && summary.TotalRows > s.maxRows {
			return nil, shared.NewDomainError("TOO_MANY_ROWS",
				fmt.Sprintf("File exceeds the limit of %d rows", s.maxRows))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		s.processRow(ctx, config, row, chunk, summary, rowErrors)

		if chunk.full() {
			if err := s.flushChunk(ctx, chunk, log); err != nil {
				return nil, err
			}
		}
	}

	if err := s.flushChunk(ctx, chunk, log); err != nil {
		return nil, err
	}

	summary.Errors = rowErrors.Errors()
	summary.ErrorRows = rowErrors.TotalCount()
	summary.TotalErrors = rowErrors.TotalCount()
	summary.IsTruncated = rowErrors.TotalCount() > rowErrors.Count()

	log.Info("import finished",
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("unmatched", summary.Unmatched),
		zap.Int("rule_without_product", summary.RuleWithoutProduct),
		zap.Int("error_rows", summary.ErrorRows))
	return summary, nil
}

// processRow maps and resolves a single row. Failures are recorded in
// the error collection and processing continues.
func (s *ImportService) processRow(
	ctx context.Context,
	config *mapping.ImportConfig,
	row *fileparse.Row,
	chunk *chunk,
	summary *ImportSummary,
	rowErrors *fileparse.ErrorCollection,
) {
	values := MapRow(config, row)

	if values.SerialNumber == "" {
		if values.ModelNo != "" || values.SupplierProductCode != "" {
			// a model without serials is still worth aggregating for
			// the operator, so route it through resolution
			res, err := s.resolver.Resolve(ctx, config, values)
			if err != nil {
				rowErrors.Add(fileparse.NewRowError(row.LineNumber, "", fileparse.ErrCodeUnresolved, err.Error()))
				return
			}
			if res.Outcome == OutcomeResolved {
				// the model is known but no record can be stored
				// without the serial, so the row is an error
				rowErrors.AddMissingFieldError(row.LineNumber, string(mapping.FieldSerialNumber))
				return
			}
			s.tally(res, summary)
			return
		}
		rowErrors.AddMissingFieldError(row.LineNumber, string(mapping.FieldSerialNumber))
		return
	}
	if values.ModelNo == "" && values.SupplierProductCode == "" {
		rowErrors.AddMissingFieldError(row.LineNumber, string(mapping.FieldModelNo))
		return
	}

	res, err := s.resolver.Resolve(ctx, config, values)
	if err != nil {
		rowErrors.Add(fileparse.NewRowError(row.LineNumber, "", fileparse.ErrCodeUnresolved, err.Error()))
		return
	}
	if res.Outcome != OutcomeResolved {
		s.tally(res, summary)
		return
	}

	info, created, err := s.upsert(ctx, config, values, res, chunk)
	if err != nil {
		rowErrors.Add(fileparse.NewRowError(row.LineNumber, "", fileparse.ErrCodeRowSkipped, err.Error()))
		return
	}
	chunk.add(values.SerialNumber, info)
	if created {
		summary.Created++
	} else {
		summary.Updated++
	}
}

func (s *ImportService) tally(res Resolution, summary *ImportSummary) {
	switch res.Outcome {
	case OutcomeRuleNoProduct:
		summary.RuleWithoutProduct++
	case OutcomeUnresolved:
		summary.Unmatched++
	}
}

// upsert finds or creates the record for the row's natural key and
// applies the mapped values onto it. Records already staged in the
// current chunk are reused so duplicate serials within one chunk update
// a single record.
func (s *ImportService) upsert(
	ctx context.Context,
	config *mapping.ImportConfig,
	values *productinfo.RowValues,
	res Resolution,
	chunk *chunk,
) (*productinfo.IncomingProductInfo, bool, error) {
	if staged := chunk.get(values.SerialNumber); staged != nil {
		staged.ApplyValues(values)
		staged.AssignProduct(res.ProductID)
		return staged, false, nil
	}

	info, err := s.infos.FindBySupplierAndSerial(ctx, config.SupplierID, values.SerialNumber)
	created := false
	if err != nil {
		if err != shared.ErrNotFound {
			return nil, false, err
		}
		info, err = productinfo.NewImportedProductInfo(config.SupplierID, values.SerialNumber)
		if err != nil {
			return nil, false, err
		}
		created = true
	}

	info.ApplyValues(values)
	if res.SupplierCode != "" {
		info.SupplierProductCode = res.SupplierCode
	}
	info.AssignProduct(res.ProductID)
	return info, created, nil
}

// flushChunk persists the staged records and resets the chunk
func (s *ImportService) flushChunk(ctx context.Context, chunk *chunk, log *logger.ContextLogger) error {
	if chunk.empty() {
		return nil
	}
	if err := s.infos.SaveBatch(ctx, chunk.records); err != nil {
		return err
	}
	log.Debug("chunk persisted", zap.Int("records", len(chunk.records)))
	chunk.reset()
	return nil
}

// MapRow turns one parsed file row into normalized row values by
// applying the configuration's column mappings. Cells under unmapped
// columns are ignored.
func MapRow(config *mapping.ImportConfig, row *fileparse.Row) *productinfo.RowValues {
	values := productinfo.NewRowValues()
	for i := range config.Mappings {
		m := &config.Mappings[i]
		cell := row.Get(m.SourceColumn)
		if cell == "" {
			continue
		}
		if m.IsCustom() {
			values.SetCustom(m.CustomFieldName, cell)
		} else {
			values.Set(m.Destination, cell)
		}
	}
	return values
}

// chunk stages records between flushes, keyed by serial number so a
// serial repeated within the chunk maps onto one record.
type chunk struct {
	limit    int
	records  []*productinfo.IncomingProductInfo
	bySerial map[string]*productinfo.IncomingProductInfo
}

func newChunk(limit int) *chunk {
	return &chunk{
		limit:    limit,
		records:  make([]*productinfo.IncomingProductInfo, 0, limit),
		bySerial: make(map[string]*productinfo.IncomingProductInfo, limit),
	}
}

func (c *chunk) get(serial string) *productinfo.IncomingProductInfo {
	return c.bySerial[serial]
}

func (c *chunk) add(serial string, info *productinfo.IncomingProductInfo) {
	if _, staged := c.bySerial[serial]; staged {
		return
	}
	c.bySerial[serial] = info
	c.records = append(c.records, info)
}

func (c *chunk) full() bool {
	return len(c.records) >= c.limit
}

func (c *chunk) empty() bool {
	return len(c.records) == 0
}

func (c *chunk) reset() {
	c.records = c.records[:0]
	c.bySerial = make(map[string]*productinfo.IncomingProductInfo, c.limit)
}
