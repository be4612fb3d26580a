package scene

import "fmt"

// NodeNotFoundError is returned when a named node lookup finds nothing.
type NodeNotFoundError struct {
	Name string
	Root string
}

func (e *NodeNotFoundError) Error() string {
	if e.Root == "" {
		return fmt.Sprintf("scene: node %q not found", e.Name)
	}
	return fmt.Sprintf("scene: node %q not found under %q", e.Name, e.Root)
}
