package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// Types
// =============================================================================

// DataExporter renders sheets of titled sections into xlsx or csv.
type DataExporter struct {
	sheets []*SheetBuilder
}

// SectionConfig defines a section of data in a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Data        interface{}    `yaml:"-"` // bound at runtime
	Locked      bool           `yaml:"locked"`
	ShowHeader  bool           `yaml:"show_header"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName string  `yaml:"field_name"` // struct field name or map key
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
	NumFmt    int     `yaml:"num_fmt"` // excelize built-in number format id
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font   *FontTemplate `yaml:"font"`
	Fill   *FillTemplate `yaml:"fill"`
	Locked *bool         `yaml:"locked"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // hex color
}

func NewDataExporter() *DataExporter {
	return &DataExporter{sheets: []*SheetBuilder{}}
}

// =============================================================================
// Fluent API
// =============================================================================

type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
}

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{
		exporter: e,
		name:     name,
		sections: []*SectionConfig{},
	}
	e.sheets = append(e.sheets, sb)
	return sb
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// =============================================================================
// Output
// =============================================================================

// BuildExcel renders every sheet into a new workbook. The caller closes it.
func (e *DataExporter) BuildExcel() (*excelize.File, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	for i, sb := range e.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sb.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sb.name); err != nil {
			f.Close()
			return nil, err
		}
		if err := renderSections(f, sb.name, sb.sections); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// ToBytes exports the workbook to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := e.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the workbook to w.
func (e *DataExporter) WriteTo(w io.Writer) (int64, error) {
	f, err := e.BuildExcel()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

// StreamTo writes the workbook using excelize stream writers. Styles, merges
// and protection are skipped; use it for long pay histories.
func (e *DataExporter) StreamTo(w io.Writer) error {
	if len(e.sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sb := range e.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sb.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sb.name); err != nil {
			return err
		}

		sw, err := f.NewStreamWriter(sb.name)
		if err != nil {
			return fmt.Errorf("failed to create stream writer: %w", err)
		}
		if err := streamSections(sw, sb.sections); err != nil {
			return err
		}
		if err := sw.Flush(); err != nil {
			return fmt.Errorf("failed to flush stream: %w", err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// StreamToResponse writes the workbook as an attachment.
func (e *DataExporter) StreamToResponse(w http.ResponseWriter, filename string) error {
	w.Header().Set("Content-Type", ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Transfer-Encoding", "binary")
	return e.StreamTo(w)
}

// ToCSV writes the first sheet as CSV: each section's title row, header row
// and data rows, with a blank line between sections.
func (e *DataExporter) ToCSV(w io.Writer) error {
	if len(e.sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	cw := csv.NewWriter(w)
	for i, sec := range e.sheets[0].sections {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if sec.Title != "" {
			if err := cw.Write([]string{sec.Title}); err != nil {
				return err
			}
		}
		if sec.ShowHeader {
			header := make([]string, len(sec.Columns))
			for j, col := range sec.Columns {
				header[j] = col.Header
			}
			if err := cw.Write(header); err != nil {
				return err
			}
		}

		err := eachRow(sec, func(values []interface{}) error {
			record := make([]string, len(values))
			for j, v := range values {
				record[j] = csvValue(v)
			}
			return cw.Write(record)
		})
		if err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToCSVBytes exports the first sheet as CSV and returns it as a byte slice.
func (e *DataExporter) ToCSVBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.ToCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Rendering Logic
// =============================================================================

func renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	currentRow := 1
	hasLockedSections := false

	for _, sec := range sections {
		if sec.Locked {
			hasLockedSections = true
		}

		// Cells of unlocked sections stay editable when the sheet is protected.
		effectiveStyle := func(base *StyleTemplate) *StyleTemplate {
			s := &StyleTemplate{}
			if base != nil {
				*s = *base
			}
			locked := sec.Locked
			s.Locked = &locked
			return s
		}

		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, currentRow)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			styleID, err := createStyle(f, effectiveStyle(sec.TitleStyle), 0)
			if err != nil {
				return err
			}
			endCell := cell
			if len(sec.Columns) > 1 {
				endCell, _ = excelize.CoordinatesToCellName(len(sec.Columns), currentRow)
				if err := f.MergeCell(sheet, cell, endCell); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, endCell, styleID); err != nil {
				return err
			}
			currentRow++
		}

		if sec.ShowHeader {
			styleID, err := createStyle(f, effectiveStyle(sec.HeaderStyle), 0)
			if err != nil {
				return err
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(1+i, currentRow)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					colName, _ := excelize.ColumnNumberToName(1 + i)
					if err := f.SetColWidth(sheet, colName, colName, col.Width); err != nil {
						return err
					}
				}
			}
			currentRow++
		}

		columnStyles := make([]int, len(sec.Columns))
		for i, col := range sec.Columns {
			styleID, err := createStyle(f, effectiveStyle(nil), col.NumFmt)
			if err != nil {
				return err
			}
			columnStyles[i] = styleID
		}

		err := eachRow(sec, func(values []interface{}) error {
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(1+j, currentRow)
				if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, columnStyles[j]); err != nil {
					return err
				}
			}
			currentRow++
			return nil
		})
		if err != nil {
			return err
		}

		// blank row between sections
		currentRow++
	}

	if hasLockedSections {
		return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		})
	}
	return nil
}

func streamSections(sw *excelize.StreamWriter, sections []*SectionConfig) error {
	rowNum := 1

	for _, sec := range sections {
		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := sw.SetRow(cell, []interface{}{sec.Title}); err != nil {
				return err
			}
			rowNum++
		}

		if sec.ShowHeader && len(sec.Columns) > 0 {
			headers := make([]interface{}, len(sec.Columns))
			for i, col := range sec.Columns {
				headers[i] = col.Header
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := sw.SetRow(cell, headers); err != nil {
				return err
			}
			rowNum++
		}

		err := eachRow(sec, func(values []interface{}) error {
			row := make([]interface{}, len(values))
			for i, v := range values {
				row[i] = cellValue(v)
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := sw.SetRow(cell, row); err != nil {
				return fmt.Errorf("error writing row %d: %w", rowNum, err)
			}
			rowNum++
			return nil
		})
		if err != nil {
			return err
		}

		rowNum++
	}
	return nil
}

// eachRow calls fn with the column values of every element of sec.Data.
func eachRow(sec *SectionConfig, fn func(values []interface{}) error) error {
	if sec.Data == nil {
		return nil
	}
	v := reflect.ValueOf(sec.Data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("section %q: data must be a slice, got %v", sec.ID, v.Kind())
	}
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		values := make([]interface{}, len(sec.Columns))
		for j, col := range sec.Columns {
			values[j] = extractValue(item, col.FieldName)
		}
		if err := fn(values); err != nil {
			return err
		}
	}
	return nil
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}
	switch item.Kind() {
	case reflect.Struct:
		if f := item.FieldByName(fieldName); f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
	case reflect.Map:
		if item.Type().Key().Kind() == reflect.String {
			if v := item.MapIndex(reflect.ValueOf(fieldName)); v.IsValid() {
				return v.Interface()
			}
		}
	}
	return ""
}

// cellValue converts money to a float so spreadsheets can sum it.
func cellValue(v interface{}) interface{} {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.InexactFloat64()
	case decimal.NullDecimal:
		if !d.Valid {
			return ""
		}
		return d.Decimal.InexactFloat64()
	}
	return v
}

func csvValue(v interface{}) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(2)
	case decimal.NullDecimal:
		if !d.Valid {
			return ""
		}
		return d.Decimal.StringFixed(2)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func createStyle(f *excelize.File, tmpl *StyleTemplate, numFmt int) (int, error) {
	style := &excelize.Style{NumFmt: numFmt}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Locked != nil {
		style.Protection = &excelize.Protection{
			Locked: *tmpl.Locked,
		}
	}
	return f.NewStyle(style)
}
