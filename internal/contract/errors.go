package contract

import "errors"

// ErrMalformedPayload indicates an upstream document that is not a JSON object.
var ErrMalformedPayload = errors.New("malformed upstream payload")
