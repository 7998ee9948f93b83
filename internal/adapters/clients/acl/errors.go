package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/jsamuelsen/postage-service/internal/adapters/clients"
	"github.com/jsamuelsen/postage-service/internal/domain"
)

// errorResponse accepts both {"error":{"code","message"}} and the flat
// {"code","message"} shape.
type errorResponse struct {
	Error   errorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *errorResponse) code() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

func (e *errorResponse) message() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// Carrier error codes with a dedicated domain mapping.
const (
	codeNotServiceable = "NOT_SERVICEABLE"
	codeUnknownService = "UNKNOWN_SERVICE"
)

func parseErrorResponse(body io.Reader) *errorResponse {
	if body == nil {
		return nil
	}

	var resp errorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&resp); err != nil {
		return nil
	}

	if resp.code() == "" && resp.message() == "" {
		return nil
	}

	return &resp
}

// MapHTTPError translates a failed call into a domain error. clientErr is
// the error returned by the HTTP client; resp is inspected only when it is
// nil. Returns nil for 2xx responses.
func MapHTTPError(resp *http.Response, clientErr error, service, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, service, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(service, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return mapStatus(resp.StatusCode, parseErrorResponse(resp.Body), service, operation)
}

func mapClientError(err error, service, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(service, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatus(status int, body *errorResponse, service, operation string) error {
	message := fmt.Sprintf("%s failed with status %d", operation, status)
	if body != nil && body.message() != "" {
		message = body.message()
	}

	if body != nil && body.code() == codeUnknownService {
		return domain.NewNotFoundError("carrier service", message)
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(service, "")

	case status == http.StatusConflict:
		return domain.NewConflictError(service, message)

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewUnavailableError(service, "credentials rejected")

	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(service, "rate limit exceeded")

	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(service, message)

	case body != nil && len(body.Error.Details) > 0:
		fields := make([]string, 0, len(body.Error.Details))
		for field := range body.Error.Details {
			fields = append(fields, field)
		}

		slices.Sort(fields)

		return domain.NewValidationError(fields[0], body.Error.Details[fields[0]])

	default:
		return domain.NewValidationError("", message)
	}
}
