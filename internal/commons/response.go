package commons

// Response is the envelope every service returns and every handler writes.
// Message carries the human-readable outcome ("Insufficient balance",
// "transfer successful"); Errors carries the individual reasons when a
// request is rejected, one string per violated rule.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// ErrorResponseFrom builds a rejection envelope straight from an error value.
// Validation errors already join their reasons into one message, so the error
// text lands in Errors as-is.
func ErrorResponseFrom[T any](message string, err error) Response[T] {
	if err == nil {
		return ErrorResponse[T](message)
	}
	return ErrorResponse[T](message, err.Error())
}
