package extractor

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func pdfText(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse pdf", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Pages without a text layer (scans) simply contribute nothing.
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
