/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// ErrorDetail is the JSON body of a failed HTTP call, both the analysis
// service's and the dashboard API's.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

func (e *ErrorDetail) Error() string {
	return e.Detail
}

// NewErrorDetail creates an ErrorDetail carrying message.
func NewErrorDetail(message string) *ErrorDetail {
	return &ErrorDetail{Detail: message}
}
