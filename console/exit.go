package console

import (
	"errors"
	"reflect"

	"github.com/snapcli/argv/argv"
	"github.com/snapcli/argv/middleware"
)

// ExitError is a sentinel used to request a specific exit code from inside main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	ValidationError int // default: 3
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, ValidationError: 3}
}

// ExitCodeManager maps errors to process exit codes.
type ExitCodeManager struct {
	codesByType  []typeCode
	codesByParse map[argv.ErrorType]int
	defaults     ExitCodeDefaults
}

// typeCode is one DefineError mapping, kept in registration order
type typeCode struct {
	typ  reflect.Type
	code int
}

func newExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByParse: make(map[argv.ErrorType]int),
		defaults:     defaultExitDefaults(),
	}
	m.wireDefaults()
	return m
}

func (e *ExitCodeManager) wireDefaults() {
	e.codesByParse[argv.ErrorTypeUnknownOption] = e.defaults.MisusageError
	e.codesByParse[argv.ErrorTypeUnknownArgument] = e.defaults.MisusageError
	e.codesByParse[argv.ErrorTypeMissingRequired] = e.defaults.MisusageError
	e.codesByParse[argv.ErrorTypeValueNotAccepted] = e.defaults.MisusageError
	e.codesByParse[argv.ErrorTypeInvalidValue] = e.defaults.ValidationError

	e.defineType(reflect.TypeOf(&middleware.TimeoutError{}), e.defaults.GeneralError)
	e.defineType(reflect.TypeOf(&middleware.RecoveryError{}), e.defaults.GeneralError)
}

// defineType replaces the code of a known type in place or appends a new mapping
func (e *ExitCodeManager) defineType(t reflect.Type, code int) {
	for i := range e.codesByType {
		if e.codesByType[i].typ == t {
			e.codesByType[i].code = code
			return
		}
	}
	e.codesByType = append(e.codesByType, typeCode{typ: t, code: code})
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code. A matching type takes precedence over the defaults but is secondary
// to an ExitError requested by main. When an error chain matches several
// types, the one registered first wins.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.defineType(reflect.TypeOf(err), code)
	return e
}

// DefineParse overrides the exit code of one parse error category.
func (e *ExitCodeManager) DefineParse(typ argv.ErrorType, code int) *ExitCodeManager {
	e.codesByParse[typ] = code
	return e
}

// Default replaces the default codes and resets the built-in mappings to them.
// Call it before DefineParse and DefineError.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	e.defaults = d
	e.wireDefaults()
	return e
}

// Defaults returns the codes currently in use.
func (e *ExitCodeManager) Defaults() ExitCodeDefaults { return e.defaults }

// Resolve converts an error to an exit code.
// Precedence:
//  1. ExitError (requested code)
//  2. ParseError category (DefineParse)
//  3. Concrete error type (DefineError)
//  4. GeneralError
func (e *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var parseErr *argv.ParseError
	if errors.As(err, &parseErr) {
		if code, ok := e.codesByParse[parseErr.Type]; ok {
			return code
		}
		return e.defaults.MisusageError
	}

	for _, tc := range e.codesByType {
		if errors.As(err, reflect.New(tc.typ).Interface()) {
			return tc.code
		}
	}

	return e.defaults.GeneralError
}
