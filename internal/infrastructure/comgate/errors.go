package comgate

import (
	"errors"
	"fmt"
)

// GatewayError carries the gateway's diagnostic payload verbatim.
// HTTPStatus and Raw are always set; Fields is nil when the response
// body did not look like key-value data at all.
type GatewayError struct {
	Code       int
	Message    string
	Fields     map[string]string
	Raw        string
	HTTPStatus int
}

func (e *GatewayError) Error() string {
	if e.Fields == nil {
		return fmt.Sprintf("comgate returned an unparseable response (status: %d)", e.HTTPStatus)
	}
	return fmt.Sprintf("comgate error [%d]: %s (status: %d)", e.Code, e.Message, e.HTTPStatus)
}

func (e *GatewayError) IsRetryable() bool {
	return e.HTTPStatus >= 500
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
