package httpadapter

import (
	"net/http"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrUnsupportedFormat),
		domain.IsKind(err, domain.ErrAnswerCountMismatch),
		domain.IsKind(err, domain.ErrAnswerOutOfRange):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrMaterialNotFound),
		domain.IsKind(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrNotReady):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
