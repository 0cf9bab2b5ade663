package owexport

// ExportError is the domain error for malformed or inconsistent renderer
// export data. It maps to a 4xx response; anything else coming out of the
// builder is an internal failure.
type ExportError struct {
	Message string
}

func (e *ExportError) Error() string {
	return e.Message
}

func newExportError(message string) *ExportError {
	return &ExportError{Message: message}
}
