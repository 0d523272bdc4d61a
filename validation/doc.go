// Package validation provides input validation for livefeed handlers and
// configuration structs.
//
// Struct tag validation (via the validator library) is used for request
// payloads and config sections:
//
//	type BroadcastRequest struct {
//	    Event   string `json:"event" validate:"required"`
//	    Pattern string `json:"pattern" validate:"required"`
//	}
//	err := validation.Validate(req)
package validation
