package models

// APIStatus is the machine-readable outcome field of an API envelope.
type APIStatus string

const (
	// APIStatusOK marks a request that completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError marks a request that failed.
	APIStatusError APIStatus = "error"
)

// APIResponse is the envelope every HTTP endpoint answers with. Status is
// always present; Message and Result are filled per endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success wraps result data in an ok envelope.
func Success(result interface{}) APIResponse {
	return APIResponse{
		Status: string(APIStatusOK),
		Result: result,
	}
}

// SuccessWithMessage wraps result data in an ok envelope with a
// human-readable note.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{
		Status:  string(APIStatusOK),
		Message: message,
		Result:  result,
	}
}

// Error builds an error envelope carrying the given message and no result.
func Error(message string) APIResponse {
	return APIResponse{
		Status:  string(APIStatusError),
		Message: message,
	}
}
