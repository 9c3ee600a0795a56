package response

// Response is the standard API envelope: status is "success" or "error",
// data carries the payload, message the human-readable error text.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success returns a standard success envelope wrapping the data
func Success(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

// Error returns a standard error envelope wrapping the message
func Error(message string) Response {
	return Response{
		Status:  "error",
		Message: message,
	}
}
