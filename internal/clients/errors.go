package clients

import "fmt"

// TransportError означает сетевую ошибку или ответ, который не удалось декодировать.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError означает неуспешный ответ API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api error on %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("api error on %s: status %d, code %d: %s", e.Endpoint, e.StatusCode, e.Code, e.Message)
}
