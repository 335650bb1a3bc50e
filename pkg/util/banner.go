package util

import (
	"fmt"
	"io"
	"strings"
)

// WriteBanner prints the program name and version framed by '='.
func WriteBanner(w io.Writer, name, version string) error {
	title := fmt.Sprintf("= %s v%s =", name, version)
	frame := strings.Repeat("=", len(title))
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", frame, title, frame)
	return err
}
