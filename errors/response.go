package errors

// Response is the JSON error body returned by HTTP handlers.
type Response struct {
	Error ResponseBody `json:"error"`
}

// ResponseBody carries the serializable parts of an AppError.
type ResponseBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an error into an HTTP error response body.
// Non-AppError values are masked as internal errors so callers never
// see raw error strings.
func ToResponse(err error) Response {
	appErr, ok := As(err)
	if !ok {
		appErr = Internal(err)
	}
	return Response{
		Error: ResponseBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Retryable,
			Details:   appErr.Details,
		},
	}
}
