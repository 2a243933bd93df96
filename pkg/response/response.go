package response

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an ErrorBody under a stable top-level key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error builds an error response with the given code and message.
func Error(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// BadRequest builds a 400-style error body.
func BadRequest(message string) ErrorResponse {
	return Error("BAD_REQUEST", message)
}

// Unauthorized builds a 401-style error body.
func Unauthorized(message string) ErrorResponse {
	return Error("UNAUTHORIZED", message)
}

// Forbidden builds a 403-style error body.
func Forbidden(message string) ErrorResponse {
	return Error("FORBIDDEN", message)
}

// NotFound builds a 404-style error body.
func NotFound(message string) ErrorResponse {
	return Error("NOT_FOUND", message)
}

// InternalError builds a 500-style error body.
func InternalError(message string) ErrorResponse {
	return Error("INTERNAL_ERROR", message)
}
