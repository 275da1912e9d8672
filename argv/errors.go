package argv

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is
var (
	// ErrInvalidParameter is matched by every error returned from Parse.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidDeclaration is matched by every error returned while declaring parameters.
	ErrInvalidDeclaration = errors.New("invalid parameter declaration")
)

// ErrorType represents the category of an input error.
// Categories drive exit-code mapping in the console package.
type ErrorType string

const (
	ErrorTypeUnknownOption    ErrorType = "unknown_option"
	ErrorTypeUnknownArgument  ErrorType = "unknown_argument"
	ErrorTypeMissingRequired  ErrorType = "missing_required"
	ErrorTypeInvalidValue     ErrorType = "invalid_value"
	ErrorTypeValueNotAccepted ErrorType = "value_not_accepted"
)

// ParseError is returned by Parse when the token vector does not satisfy the declared parameters
type ParseError struct {
	Type       ErrorType
	Message    string
	Parameter  string // primary name of the parameter involved, if any
	Token      string // offending token or option name as typed
	Suggestion string // closest known option name for unknown options
}

func (e *ParseError) Error() string {
	return e.Message
}

// Is makes every ParseError match ErrInvalidParameter
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidParameter
}

func newParseError(typ ErrorType, format string, args ...any) *ParseError {
	return &ParseError{Type: typ, Message: fmt.Sprintf(format, args...)}
}

// DeclarationError reports a malformed parameter declaration.
// These are programming mistakes and are expected to abort the program.
type DeclarationError struct {
	Parameter string
	Message   string
}

func (e *DeclarationError) Error() string {
	return e.Message
}

// Is makes every DeclarationError match ErrInvalidDeclaration
func (e *DeclarationError) Is(target error) bool {
	return target == ErrInvalidDeclaration
}

func declarationErrorf(param, format string, args ...any) *DeclarationError {
	return &DeclarationError{Parameter: param, Message: fmt.Sprintf(format, args...)}
}
