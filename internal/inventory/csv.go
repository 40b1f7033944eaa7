package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// CSV column headers
const (
	ColProductName       = "Shoe Description"
	ColCurrentStock      = "Number of Items Left"
	ColCategory          = "Category"
	ColReorderPoint      = "Reorder Point"
	ColReorderQuantity   = "Reorder Quantity"
	ColLeadTimeDays      = "Lead Time (days)"
	ColWarehouseLocation = "Warehouse Location"
	ColCostPerUnit       = "Cost Per Unit"
	ColSellingPrice      = "Selling Price"
)

// Columns is the full header written on save, in order.
var Columns = []string{
	ColProductName,
	ColCurrentStock,
	ColCategory,
	ColReorderPoint,
	ColReorderQuantity,
	ColLeadTimeDays,
	ColWarehouseLocation,
	ColCostPerUnit,
	ColSellingPrice,
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "(", "", ")", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))
	return columnNameSanitizer.Replace(name)
}

// columnIndex maps each known header to its position, -1 when absent.
type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	byNorm := make(map[string]int, len(header))
	for i, h := range header {
		n := normalizeColumnName(h)
		if _, seen := byNorm[n]; !seen {
			byNorm[n] = i
		}
	}
	idx := make(columnIndex, len(Columns))
	for _, col := range Columns {
		if i, ok := byNorm[normalizeColumnName(col)]; ok {
			idx[col] = i
		} else {
			idx[col] = -1
		}
	}
	return idx
}

// cell returns the trimmed value for col, and false when the column is
// absent or the value is empty.
func (ci columnIndex) cell(record []string, col string) (string, bool) {
	i := ci[col]
	if i < 0 || i >= len(record) {
		return "", false
	}
	v := strings.TrimSpace(record[i])
	if v == "" {
		return "", false
	}
	return v, true
}

// maxCount bounds stock and the optional integer columns.
const maxCount = math.MaxInt32

// parseNumber accepts integers and spreadsheet-style floats ("120.0", "1,200").
// NaN and infinities are rejected.
func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (ci columnIndex) intOr(record []string, col string, fallback int) int {
	v, ok := ci.cell(record, col)
	if !ok {
		return fallback
	}
	f, ok := parseNumber(v)
	if !ok || f < 0 || f > maxCount {
		log.Debug().Str("column", col).Str("value", v).Msg("inventory: unparseable value, using default")
		return fallback
	}
	return int(f)
}

func (ci columnIndex) floatOr(record []string, col string, fallback float64) float64 {
	v, ok := ci.cell(record, col)
	if !ok {
		return fallback
	}
	f, ok := parseNumber(strings.TrimPrefix(v, "$"))
	if !ok || f < 0 {
		log.Debug().Str("column", col).Str("value", v).Msg("inventory: unparseable value, using default")
		return fallback
	}
	return f
}

func (ci columnIndex) stringOr(record []string, col string, fallback string) string {
	if v, ok := ci.cell(record, col); ok {
		return v
	}
	return fallback
}

// LoadFile reads and decodes an inventory CSV from disk.
func LoadFile(path string, calc *DefaultsCalculator) ([]domain.InventoryItem, error) {
	if path == "" {
		return nil, domain.NewDataSourceError(path, "no inventory file configured", nil)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewDataSourceError(path, "file not found", err)
		}
		return nil, domain.NewDataSourceError(path, "cannot open file", err)
	}
	defer file.Close()

	return ReadItems(file, path, calc)
}

// ReadItems decodes inventory rows. Any present, non-empty optional column
// overrides the computed default for that field on that row.
func ReadItems(r io.Reader, source string, calc *DefaultsCalculator) ([]domain.InventoryItem, error) {
	if calc == nil {
		calc = NewDefaultsCalculator(0)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, domain.NewDataSourceError(source, "file is empty", nil)
	}
	if err != nil {
		return nil, domain.NewDataSourceError(source, "cannot read header", err)
	}

	idx := indexColumns(header)
	if idx[ColProductName] < 0 || idx[ColCurrentStock] < 0 {
		return nil, domain.NewDataSourceError(source,
			fmt.Sprintf("file must contain columns %q and %q, found %q", ColProductName, ColCurrentStock, header), nil)
	}

	items := make([]domain.InventoryItem, 0)
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, domain.NewDataSourceError(source, fmt.Sprintf("malformed row %d", line), err)
		}

		item, ok := decodeRow(idx, record, calc)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}

	if skipped > 0 {
		log.Debug().Str("source", source).Int("skipped", skipped).Msg("inventory: skipped invalid rows")
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", source, domain.ErrEmptyDataset)
	}

	return items, nil
}

func decodeRow(idx columnIndex, record []string, calc *DefaultsCalculator) (domain.InventoryItem, bool) {
	name, ok := idx.cell(record, ColProductName)
	if !ok {
		return domain.InventoryItem{}, false
	}
	rawStock, ok := idx.cell(record, ColCurrentStock)
	if !ok {
		return domain.InventoryItem{}, false
	}
	stockF, ok := parseNumber(rawStock)
	if !ok || stockF < 0 || stockF > maxCount {
		return domain.InventoryItem{}, false
	}
	stock := int(stockF)

	category := idx.stringOr(record, ColCategory, "")
	if category == "" {
		category = InferCategory(name)
	}

	d := calc.Compute(stock, category)

	return domain.InventoryItem{
		ProductName:       name,
		Category:          category,
		CurrentStock:      stock,
		ReorderPoint:      idx.intOr(record, ColReorderPoint, d.ReorderPoint),
		ReorderQuantity:   idx.intOr(record, ColReorderQuantity, d.ReorderQuantity),
		LeadTimeDays:      idx.intOr(record, ColLeadTimeDays, d.LeadTimeDays),
		WarehouseLocation: idx.stringOr(record, ColWarehouseLocation, d.WarehouseLocation),
		CostPerUnit:       roundMoney(idx.floatOr(record, ColCostPerUnit, d.CostPerUnit)),
		SellingPrice:      roundMoney(idx.floatOr(record, ColSellingPrice, d.SellingPrice)),
	}, true
}

// WriteItems encodes items with all nine columns.
func WriteItems(w io.Writer, items []domain.InventoryItem) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, it := range items {
		rec := []string{
			it.ProductName,
			strconv.Itoa(it.CurrentStock),
			it.Category,
			strconv.Itoa(it.ReorderPoint),
			strconv.Itoa(it.ReorderQuantity),
			strconv.Itoa(it.LeadTimeDays),
			it.WarehouseLocation,
			formatMoney(it.CostPerUnit),
			formatMoney(it.SellingPrice),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveFile replaces path with the encoded items. The file is written to a
// temporary sibling and renamed, so readers see either the old or the new
// content in full. An existing file keeps its permissions.
func SaveFile(path string, items []domain.InventoryItem) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := WriteItems(tmp, items); err != nil {
		tmp.Close()
		return fmt.Errorf("encode inventory: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
