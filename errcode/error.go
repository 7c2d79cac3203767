// Package errcode layered error codes
// Code format: MMBBBB (MM = module code, BBBB = business code)
package errcode

import (
	"fmt"
)

// LayeredError error with a module scoped code, context data and a cause chain
// With* methods return copies, registered errors are never mutated
type LayeredError struct {
	module string                 // module name (nacos, config)
	code   int                    // full code, e.g. 600001
	msgKey string                 // message key, e.g. "error.nacos.boot_config"
	msg    string                 // default message
	data   map[string]interface{} // context data
	cause  error                  // wrapped error
}

// New creates a layered error
// moduleCode: 10-99, businessCode: 0001-9999
func New(moduleCode, businessCode int, module, msgKey, msg string) *LayeredError {
	return &LayeredError{
		module: module,
		code:   moduleCode*10000 + businessCode,
		msgKey: msgKey,
		msg:    msg,
		data:   make(map[string]interface{}),
	}
}

// Error implements error
func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code full error code
func (e *LayeredError) Code() int {
	return e.code
}

// Module module name
func (e *LayeredError) Module() string {
	return e.module
}

// MsgKey message key
func (e *LayeredError) MsgKey() string {
	return e.msgKey
}

// Message message without the cause
func (e *LayeredError) Message() string {
	return e.msg
}

// Data context data
func (e *LayeredError) Data() map[string]interface{} {
	return e.data
}

// Unwrap supports errors.Is / errors.As through the cause
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// Is matches any LayeredError with the same code
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// WithMsgf replaces the message
func (e *LayeredError) WithMsgf(format string, args ...interface{}) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData adds one context value
func (e *LayeredError) WithData(key string, value interface{}) *LayeredError {
	clone := *e
	clone.data = make(map[string]interface{}, len(e.data)+1)
	for k, v := range e.data {
		clone.data[k] = v
	}
	clone.data[key] = value
	return &clone
}

// Wrap attaches a cause (nil cause returns the receiver)
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// String debug representation
func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}", e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}
