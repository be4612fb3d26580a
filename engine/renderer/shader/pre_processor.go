// pre_processor.go expands @scrollbot:include annotations with the shared WGSL chunks
// embedded from assets/chunks. Each chunk is injected at most once per program, so a
// program can include "object" after "camera" without duplicating declarations.
package shader

import (
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed assets/chunks/*.wgsl
var chunkFS embed.FS

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// chunks maps a chunk name to its WGSL source.
	chunks map[string]string

	// includes accumulates the chunk names injected by the last Process call, in order.
	includes []string
}

// PreProcessor expands annotations in raw WGSL source.
type PreProcessor interface {
	// Process replaces every include annotation with the named chunk's source.
	// Repeated includes of the same chunk are dropped.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if an annotation is malformed or names an unknown chunk
	Process(source string) (string, error)

	// Includes returns the chunks injected by the most recent Process call, in source order.
	//
	// Returns:
	//   - []string: the chunk names
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with every embedded chunk registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	p := &preProcessor{chunks: make(map[string]string)}
	entries, err := chunkFS.ReadDir("assets/chunks")
	if err != nil {
		panic(fmt.Sprintf("shader: embedded chunks unreadable: %v", err))
	}
	for _, e := range entries {
		data, err := chunkFS.ReadFile(path.Join("assets/chunks", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("shader: embedded chunk %q unreadable: %v", e.Name(), err))
		}
		p.chunks[strings.TrimSuffix(e.Name(), ".wgsl")] = string(data)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.includes = p.includes[:0]
	seen := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			name := a.Args[0]
			chunk, ok := p.chunks[name]
			if !ok {
				return "", fmt.Errorf("line %d: unknown include %q", a.Line, name)
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			p.includes = append(p.includes, name)
			out = append(out, chunk)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	return append([]string(nil), p.includes...)
}
