package report

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_template.yaml
var defaultTemplateYAML string

// ReportTemplate represents the YAML layout of every report.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

func ParseTemplate(r io.Reader) (*ReportTemplate, error) {
	var tmpl ReportTemplate
	if err := yaml.NewDecoder(r).Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &tmpl, nil
}

// DefaultTemplate returns a fresh copy of the built-in layout.
func DefaultTemplate() *ReportTemplate {
	var tmpl ReportTemplate
	if err := yaml.Unmarshal([]byte(defaultTemplateYAML), &tmpl); err != nil {
		panic("report: invalid built-in template: " + err.Error())
	}
	return &tmpl
}

// LoadTemplate returns the built-in layout with the overrides in path
// applied. An empty path yields the built-in layout.
func LoadTemplate(path string) (*ReportTemplate, error) {
	tmpl := DefaultTemplate()
	if path == "" {
		return tmpl, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open yaml file: %w", err)
	}
	defer f.Close()

	override, err := ParseTemplate(f)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Merge(override); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Merge applies the non-empty sheet names, section titles, styles and column
// headers of o to the sections of t with the same ids. Columns are matched by
// field name; o cannot add sections or columns.
func (t *ReportTemplate) Merge(o *ReportTemplate) error {
	for _, osheet := range o.Sheets {
		for _, osec := range osheet.Sections {
			si, ci, ok := t.find(osec.ID)
			if !ok {
				return fmt.Errorf("template: unknown section %q", osec.ID)
			}
			if osheet.Name != "" {
				t.Sheets[si].Name = osheet.Name
			}

			sec := &t.Sheets[si].Sections[ci]
			if osec.Title != "" {
				sec.Title = osec.Title
			}
			if osec.TitleStyle != nil {
				sec.TitleStyle = osec.TitleStyle
			}
			if osec.HeaderStyle != nil {
				sec.HeaderStyle = osec.HeaderStyle
			}
			for _, ocol := range osec.Columns {
				col := findColumn(sec.Columns, ocol.FieldName)
				if col == nil {
					return fmt.Errorf("template: section %q has no column %q", osec.ID, ocol.FieldName)
				}
				if ocol.Header != "" {
					col.Header = ocol.Header
				}
				if ocol.Width > 0 {
					col.Width = ocol.Width
				}
				if ocol.NumFmt > 0 {
					col.NumFmt = ocol.NumFmt
				}
			}
		}
	}
	return nil
}

func (t *ReportTemplate) find(id string) (sheet, section int, ok bool) {
	for si, s := range t.Sheets {
		for ci, sec := range s.Sections {
			if sec.ID == id {
				return si, ci, true
			}
		}
	}
	return 0, 0, false
}

func findColumn(cols []ColumnConfig, field string) *ColumnConfig {
	for i := range cols {
		if cols[i].FieldName == field {
			return &cols[i]
		}
	}
	return nil
}

// section returns the sheet name and a copy of the section with id.
func (t *ReportTemplate) section(id string) (string, SectionConfig, error) {
	si, ci, ok := t.find(id)
	if !ok {
		return "", SectionConfig{}, fmt.Errorf("template: unknown section %q", id)
	}
	sec := t.Sheets[si].Sections[ci]
	sec.Columns = append([]ColumnConfig(nil), sec.Columns...)
	return t.Sheets[si].Name, sec, nil
}
