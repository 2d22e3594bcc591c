// Package export writes tabular data as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of an .xlsx workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet: a header row followed by data rows
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Write renders the sheets into a single workbook
func Write(w io.Writer, sheets ...Sheet) error {
	file := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := file.AddSheet(s.Name)
		if err != nil {
			return fmt.Errorf("add sheet %q: %w", s.Name, err)
		}

		header := sheet.AddRow()
		for _, h := range s.Header {
			header.AddCell().SetValue(h)
		}
		for _, values := range s.Rows {
			row := sheet.AddRow()
			for _, v := range values {
				row.AddCell().SetValue(v)
			}
		}
	}
	return file.Write(w)
}
