package extractor

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func spreadsheetText(raw []byte) (string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse spreadsheet", err)
	}
	defer file.Close()

	var b strings.Builder
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			continue
		}
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
