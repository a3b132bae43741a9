// Package xmi is the placeholder for XMI (XML Metadata Interchange) output.
//
// XMI export is not supported. [Emitter] satisfies [diagram.Serializer] so
// callers can select formats uniformly, and always fails with an
// UNSUPPORTED error that front ends map to a "not implemented" response.
package xmi

import (
	"github.com/matzehuels/classgraph/pkg/diagram"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
)

// Format is the output format name.
const Format = "xmi"

// Emitter renders graphs as XMI.
type Emitter struct{}

// Serialize always returns an UNSUPPORTED error.
func (Emitter) Serialize(*diagram.Graph) (string, error) {
	return "", cgerrors.Unsupported("XMI output")
}
