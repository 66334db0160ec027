package types

// SuccessEnvelope wraps every successful response body. The customer app and
// the owner dashboard both unwrap the data key before rendering.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of pkg/errors: the code drives client
// branching, the message is display text, details carry field-level
// validation context when the code allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
