// annotations.go defines the annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @scrollbot: and are replaced
// by the pre-processor before the source reaches the GPU compiler.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL comment line.
const annotationPrefix = "@scrollbot:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a shared WGSL chunk at the annotation site.
	//
	// Syntax: //@scrollbot:include <chunk>
	//
	// Example: //@scrollbot:include camera
	AnnotationTypeInclude AnnotationType = "include"
)

// Annotation is a single parsed annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. For include, [0] is the chunk name.
	Args []string

	// Line is the 1-based source line, used for error reporting.
	Line int
}

// parseAnnotation parses a single WGSL line. Lines that are not annotation comments return (nil, nil).
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for errors
//
// Returns:
//   - *Annotation: the parsed annotation or nil
//   - error: an error if the line is a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	body, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNum}
	switch a.Type {
	case AnnotationTypeInclude:
		if len(a.Args) != 1 {
			return nil, fmt.Errorf("line %d: include takes exactly one chunk name, got %d", lineNum, len(a.Args))
		}
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, a.Type)
	}
	return a, nil
}
