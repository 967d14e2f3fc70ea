package errors

import (
	"os"
)

// OsExit is a variable for testing, so we can mock os.Exit.
var OsExit = os.Exit

// PrintError formats err and writes it to stderr.
func PrintError(err error, config FormatterConfig) {
	if err == nil {
		return
	}
	_, _ = os.Stderr.WriteString(Format(err, config) + newline)
}
