package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateUnavailable is returned when no valid Definition could be
	// obtained for a render.
	ErrTemplateUnavailable = errors.New("compose: template unavailable")

	// ErrInvalidTemplateShape is returned when a template payload has no
	// "elements" array. It is raised when a template is written, never
	// during a render.
	ErrInvalidTemplateShape = errors.New("compose: invalid template shape")

	// ErrAssetAcquisition marks a failure to fetch or decode an element's
	// image. It is fatal to the render that hit it.
	ErrAssetAcquisition = errors.New("compose: asset acquisition failed")

	// ErrElementShape marks an element whose fields could not be decoded.
	// Shape errors are deferred from write time to render time.
	ErrElementShape = errors.New("compose: invalid element")

	// ErrBackgroundUnresolvable describes a background that could not be
	// loaded. Renders recover from it; it only appears in logs.
	ErrBackgroundUnresolvable = errors.New("compose: background unresolvable")
)

// RenderError reports a failed render. Index identifies the offending
// element in the template, or is -1 when the failure is not tied to one.
type RenderError struct {
	Index int
	Name  string
	Type  string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("compose: render failed: %v", e.Err)
	}
	if e.Name != "" {
		return fmt.Sprintf("compose: render failed at element %d (%s %q): %v", e.Index, e.Type, e.Name, e.Err)
	}
	return fmt.Sprintf("compose: render failed at element %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// elementError wraps err with the identity of the element at index i.
func elementError(i int, el Element, err error) *RenderError {
	return &RenderError{
		Index: i,
		Name:  elementName(el),
		Type:  elementType(el),
		Err:   err,
	}
}
