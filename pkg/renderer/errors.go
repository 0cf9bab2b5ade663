package renderer

import "fmt"

// ConfigurationError reports that the renderer could not be driven with the
// assembled input model, e.g. an unknown document type or missing template.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("renderer configuration: %s", e.Message)
}

// RenderError reports that the renderer accepted the input model but failed
// while producing the documents.
type RenderError struct {
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %s", e.Message)
}
