package compiler

import (
	"errors"
	"fmt"
)

// UndefinedSymbolError is returned when a name is neither a global
// constant, a global callable, nor a local slot.
type UndefinedSymbolError struct {
	Name string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol: %s", e.Name)
}

// IsUndefinedSymbol reports whether err carries an UndefinedSymbolError and
// returns the offending name.
func IsUndefinedSymbol(err error) (string, bool) {
	var undef *UndefinedSymbolError
	if errors.As(err, &undef) {
		return undef.Name, true
	}
	return "", false
}
