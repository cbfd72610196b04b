package errors

import (
	"errors"
	"strings"
	"testing"
)

// Test codes for testing
var (
	testCode          = MustNewCode("test.code")
	tableNotFoundCode = MustNewCode("query.table_not_found")
)

func TestNew(t *testing.T) {
	err := New(CommonInternal, "test failure", nil)

	if err.Message != "test failure" {
		t.Errorf("Expected message 'test failure', got '%s'", err.Message)
	}

	if err.Code.String() != "common.internal" {
		t.Errorf("Expected code 'common.internal', got '%s'", err.Code.String())
	}

	if err.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	if len(err.Stack) == 0 {
		t.Error("Expected stack trace to be captured")
	}
}

func TestNewWithCause(t *testing.T) {
	originalErr := errors.New("original failure")
	err := New(testCode, "wrapped failure", originalErr)

	if err.Message != "wrapped failure" {
		t.Errorf("Expected message 'wrapped failure', got '%s'", err.Message)
	}

	if err.Code.String() != "test.code" {
		t.Errorf("Expected code 'test.code', got '%s'", err.Code.String())
	}

	if err.Cause != originalErr {
		t.Error("Expected cause to be set to original error")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CommonInternal, "test failure with %s", "formatting")

	expected := "test failure with formatting"
	if err.Message != expected {
		t.Errorf("Expected message '%s', got '%s'", expected, err.Message)
	}

	if err.Code.String() != "common.internal" {
		t.Errorf("Expected code 'common.internal', got '%s'", err.Code.String())
	}

	if err.Cause != nil {
		t.Error("Expected Newf to leave cause unset")
	}
}

func TestAddContext(t *testing.T) {
	err := New(testCode, "test failure", nil).
		AddContext("key1", "value1").
		AddContext("key2", "value2")

	if err.Context["key1"] != "value1" {
		t.Errorf("Expected context key1='value1', got '%s'", err.Context["key1"])
	}

	if err.Context["key2"] != "value2" {
		t.Errorf("Expected context key2='value2', got '%s'", err.Context["key2"])
	}
}

func TestWithCause(t *testing.T) {
	originalErr := errors.New("original failure")
	err := Newf(testCode, "test failure").WithCause(originalErr)

	if err.Cause != originalErr {
		t.Error("Expected cause to be set to original error")
	}
}

func TestErrorString(t *testing.T) {
	err := New(testCode, "test failure", nil)
	if err.Error() != "test failure" {
		t.Errorf("Expected error string 'test failure', got '%s'", err.Error())
	}

	originalErr := errors.New("original failure")
	err = New(testCode, "wrapped failure", originalErr)
	expected := "wrapped failure: original failure"
	if err.Error() != expected {
		t.Errorf("Expected error string '%s', got '%s'", expected, err.Error())
	}
}

func TestUnwrap(t *testing.T) {
	originalErr := errors.New("original failure")
	err := New(testCode, "wrapped failure", originalErr)

	if !errors.Is(err, originalErr) {
		t.Error("Expected errors.Is to see through the wrap")
	}

	if err.Unwrap() != originalErr {
		t.Error("Expected Unwrap to return original error")
	}
}

func TestCaptureStackTrace(t *testing.T) {
	err := New(testCode, "test failure", nil)

	if len(err.Stack) == 0 {
		t.Error("Expected stack trace to be captured")
	}

	hasValidFunction := false
	for _, frame := range err.Stack {
		if frame.Function != "" && frame.File != "" && frame.Line > 0 {
			hasValidFunction = true
			break
		}
	}

	if !hasValidFunction {
		t.Error("Expected valid stack frame information")
	}
}

func TestMethodChaining(t *testing.T) {
	err := New(testCode, "test failure", nil).
		AddContext("key", "value").
		WithCause(errors.New("cause"))

	if err.Code.String() != "test.code" {
		t.Errorf("Expected code 'test.code', got '%s'", err.Code.String())
	}

	if err.Context["key"] != "value" {
		t.Errorf("Expected context key='value', got '%s'", err.Context["key"])
	}

	if err.Cause == nil {
		t.Error("Expected cause to be set")
	}
}

func TestIsFloeError(t *testing.T) {
	err := New(testCode, "test failure", nil)
	if !IsFloeError(err) {
		t.Error("Expected IsFloeError to return true for our error type")
	}

	stdErr := errors.New("standard failure")
	if IsFloeError(stdErr) {
		t.Error("Expected IsFloeError to return false for standard error")
	}
}

func TestHasCode(t *testing.T) {
	err := New(tableNotFoundCode, "missing", nil)
	if !HasCode(err, tableNotFoundCode) {
		t.Error("Expected HasCode to match the carried code")
	}
	if HasCode(err, testCode) {
		t.Error("Expected HasCode to reject a different code")
	}
	if HasCode(errors.New("plain"), testCode) {
		t.Error("Expected HasCode to reject standard errors")
	}
}

func TestGetContext(t *testing.T) {
	err := New(testCode, "test failure", nil).AddContext("key", "value")
	context := GetContext(err)

	if context["key"] != "value" {
		t.Errorf("Expected context key='value', got '%s'", context["key"])
	}

	stdErr := errors.New("standard failure")
	if GetContext(stdErr) != nil {
		t.Error("Expected GetContext to return nil for standard error")
	}
}

func TestGetCode(t *testing.T) {
	err := New(testCode, "test failure", nil)
	if GetCode(err) != "test.code" {
		t.Errorf("Expected code 'test.code', got '%s'", GetCode(err))
	}

	stdErr := errors.New("standard failure")
	if GetCode(stdErr) != "" {
		t.Error("Expected GetCode to return empty string for standard error")
	}
}

func TestFormatError(t *testing.T) {
	err := New(testCode, "test failure", nil).
		AddContext("key1", "value1").
		WithCause(errors.New("cause failure"))

	logStr := FormatError(err)

	if !strings.Contains(logStr, "Code: test.code") {
		t.Error("Expected log string to contain code")
	}
	if !strings.Contains(logStr, "Message: test failure") {
		t.Error("Expected log string to contain message")
	}
	if !strings.Contains(logStr, "key1: value1") {
		t.Error("Expected log string to contain context")
	}
	if !strings.Contains(logStr, "Cause: cause failure") {
		t.Error("Expected log string to contain cause")
	}

	stdErr := errors.New("standard failure")
	if FormatError(stdErr) != "standard failure" {
		t.Errorf("Expected log string 'standard failure', got '%s'", FormatError(stdErr))
	}
}

type transformable struct{ msg string }

func (tr *transformable) Error() string { return tr.msg }
func (tr *transformable) Transform() *Error {
	return New(tableNotFoundCode, tr.msg, nil)
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Error("Expected AsError(nil) to return nil")
	}

	ours := New(testCode, "ours", nil)
	if AsError(ours) != ours {
		t.Error("Expected AsError to pass through *Error unchanged")
	}

	tr := &transformable{msg: "table gone"}
	converted := AsError(tr)
	if converted.Code.String() != "query.table_not_found" {
		t.Errorf("Expected transformed code, got '%s'", converted.Code.String())
	}

	std := errors.New("plain failure")
	wrapped := AsError(std)
	if wrapped.Code.String() != "common.internal" {
		t.Errorf("Expected common.internal fallback, got '%s'", wrapped.Code.String())
	}
	if wrapped.Cause != std {
		t.Error("Expected fallback wrap to keep the cause")
	}
}
