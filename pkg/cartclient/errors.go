package cartclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/types"
)

// APIError is a non-2xx response from the Cart API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("cart api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("cart api status %d: %s: %s", e.Status, e.Code, e.Message)
}

// decodeError maps the error envelope to a typed error; unknown bodies become dependency errors.
func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}

	code := pkgerrors.Code(apiErr.Code)
	if !pkgerrors.Known(code) {
		code = pkgerrors.CodeDependency
	}
	wrapped := pkgerrors.Wrap(code, apiErr, "cart api request failed")
	if apiErr.Details != nil {
		wrapped = wrapped.WithDetails(apiErr.Details)
	}
	return wrapped
}
