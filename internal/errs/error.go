package errs

import (
	"errors"
	"fmt"
)

var (
	ServiceTypError = errors.New("willitserver: service must be a non-nil pointer to a struct")
	FuncTypError    = errors.New("willitserver: value must be a function")
	NilFuncError    = errors.New("willitserver: function must not be nil")
)

var (
	ConfigReadError    = errors.New("willitserver: could not read config")
	InvalidConfigError = errors.New("willitserver: invalid config")
)

func NewFuncTypError(typ any) error {
	return fmt.Errorf("%w, got %T", FuncTypError, typ)
}

func NewInvalidLogLevelError(level string) error {
	return fmt.Errorf("%w: unknown log level %q", InvalidConfigError, level)
}
