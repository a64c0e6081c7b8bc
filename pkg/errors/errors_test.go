package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromError_FindsWrappedAppError(t *testing.T) {
	decodeErr := NewDecodeError(stderrors.New("bad xref"))
	wrapped := fmt.Errorf("convert report.pdf: %w", decodeErr)

	appErr := FromError(wrapped)

	assert.Same(t, decodeErr, appErr)
	assert.True(t, IsDecode(wrapped))
	assert.Equal(t, "bad xref", appErr.ToErrorResponse().Details)
}

func TestFromError_WrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(stderrors.New("boom"))

	assert.Equal(t, ErrorCodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Nil(t, FromError(nil))
}

func TestErrorResponse_OmitsEmptyDetails(t *testing.T) {
	resp := NewBadRequestError(MsgNoFileUploaded).ToErrorResponse()

	assert.Equal(t, ErrorResponse{Error: "No file uploaded"}, resp)
}

func TestTaxonomyStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		check  func(error) bool
	}{
		{"validation", NewValidationError(MsgInvalidPDF), http.StatusBadRequest, IsValidation},
		{"parse", NewParseError(stderrors.New("eof")), http.StatusBadRequest, IsParse},
		{"transport", NewTransportError(stderrors.New("refused")), http.StatusBadGateway, IsTransport},
		{"filesystem", NewFilesystemError("remove failed", stderrors.New("busy")), http.StatusInternalServerError, IsFilesystem},
		{"decode", NewDecodeError(stderrors.New("bad")), http.StatusInternalServerError, IsDecode},
		{"unauthorized", NewUnauthorizedError("Invalid token"), http.StatusUnauthorized,
			func(err error) bool { return CodeOf(err) == ErrorCodeUnauthorized }},
		{"forbidden", NewForbiddenError("Insufficient permissions"), http.StatusForbidden,
			func(err error) bool { return CodeOf(err) == ErrorCodeForbidden }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, ToHTTPStatus(tt.err.Code))
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestTransportError_HidesCauseFromUser(t *testing.T) {
	err := NewTransportError(stderrors.New("dial tcp 127.0.0.1:3000: connection refused"))

	assert.Equal(t, MsgConversionFailed, err.ToErrorResponse().Error)
	assert.Empty(t, err.ToErrorResponse().Details)
	assert.Contains(t, err.Error(), "connection refused")
}
