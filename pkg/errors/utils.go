package errors

import (
	"fmt"
	"strings"
)

// Helper to check if an error is of our Error type
func IsFloeError(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// Helper to extract context from our errors
func GetContext(err error) map[string]string {
	if floeErr, ok := err.(*Error); ok {
		return floeErr.Context
	}
	return nil
}

// Helper to get error code
func GetCode(err error) string {
	if floeErr, ok := err.(*Error); ok {
		return floeErr.Code.String()
	}
	return ""
}

// HasCode reports whether err (or any error in its chain head) carries code.
func HasCode(err error, code Code) bool {
	floeErr, ok := err.(*Error)
	return ok && floeErr.Code.Equals(code)
}

// Helper to format error for logging
func FormatError(err error) string {
	if floeErr, ok := err.(*Error); ok {
		var parts []string
		parts = append(parts, fmt.Sprintf("Code: %s", floeErr.Code))
		parts = append(parts, fmt.Sprintf("Message: %s", floeErr.Message))

		if len(floeErr.Context) > 0 {
			parts = append(parts, "Context:")
			for k, v := range floeErr.Context {
				parts = append(parts, fmt.Sprintf("  %s: %v", k, v))
			}
		}

		if floeErr.Cause != nil {
			parts = append(parts, fmt.Sprintf("Cause: %v", floeErr.Cause))
		}

		return strings.Join(parts, "\n")
	}
	return err.Error()
}

// AsError converts any error to the internal *Error format. InternalError
// types are transformed via their Transform method, existing *Error values
// pass through unchanged, and anything else is wrapped as CommonInternal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	if ie, ok := err.(InternalError); ok {
		return ie.Transform()
	}

	if internalErr, ok := err.(*Error); ok {
		return internalErr
	}

	return New(CommonInternal, err.Error(), err)
}
