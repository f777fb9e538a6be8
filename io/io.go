// Package io offers file helpers for pptrees objects.
package io

import (
	"io"
	"os"
)

// WriteFile serializes o into a new file at path, truncating any
// previous content.
func WriteFile(path string, o io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := o.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile deserializes the file at path into o.
func ReadFile(path string, o io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = o.ReadFrom(f)
	return err
}
