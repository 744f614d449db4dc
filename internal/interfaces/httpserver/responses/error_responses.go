package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code      string            `json:"code"` // UUID from PlatformError
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Type      string            `json:"type,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Notices   []checkout.Notice `json:"notices,omitempty"`
}

// HandleError renders err as JSON. notices raised by the failed transition
// travel with the error so the page can show them.
func HandleError(reqCtx *gin.Context, err error, message string, notices ...checkout.Notice) {
	_ = reqCtx.Error(err)

	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		errorMessage := domainErr.Message
		if errorMessage == "" {
			errorMessage = message
		}
		reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType()), ErrorResponse{
			Code:      domainErr.GetUUID(),
			Error:     errorMessage,
			Message:   errorMessage,
			Type:      string(domainErr.GetErrorType()),
			RequestID: domainErr.GetRequestID(),
			Notices:   notices,
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:     message,
		Message:   message,
		Type:      string(platformerrors.ErrorTypeInternal),
		RequestID: platformerrors.RequestIDFromContext(reqCtx.Request.Context()),
		Notices:   notices,
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	HandleError(reqCtx, err, message)
}
