package httpapi

import "errors"

var (
	ErrInvalidParams = errors.New("invalid query parameters")
	ErrRateLimited   = errors.New("rate limit exceeded")
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error()}
}
