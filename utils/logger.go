package utils

import (
	"fmt"
	"io"
)

// Logger writes per-asset diagnostics. A nil *Logger discards everything.
type Logger struct {
	io.Writer
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil && l.Writer != nil {
		fmt.Fprintf(l, format+"\n", a...)
	}
}
