package quizdoc

import "fmt"

// FormatError means the bytes are not a readable package of the declared format.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s document: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// MissingContentError means the document has no text-bearing blocks.
type MissingContentError struct {
	Name string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("document %q has no text content", e.Name)
}

// ImageNotFoundError means an HTML image reference has no extracted file.
type ImageNotFoundError struct {
	Ref      string
	Position int
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("image %q referenced in block %d not found", e.Ref, e.Position)
}

// MetadataError rejects caller-supplied category/duration/subject values.
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
