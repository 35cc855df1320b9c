package extractor

import (
	"fmt"
	"unicode/utf8"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func plainText(raw []byte, filename string) (string, error) {
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "parse plaintext", fmt.Errorf("file %s is not valid utf-8", filename))
	}
	return string(raw), nil
}
