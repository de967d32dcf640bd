package toolutils

import (
	"fmt"
	"io"
	"strings"
)

type StatusPrinter struct {
	File    io.Writer
	Padding int
}

// Print writes a key=value line with the key right-aligned to Padding.
func (s StatusPrinter) Print(key string, value any) {
	fmt.Fprintf(s.File, "%s%s=%v\n", strings.Repeat(" ", max(0, s.Padding-len(key))), key, value)
}
