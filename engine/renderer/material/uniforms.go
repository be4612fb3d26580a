package material

import (
	"fmt"

	"github.com/Carmen-Shannon/scrollbot/common"
)

// Uniform names shared between the Go side and the WGSL programs.
const (
	UniformTime           = "uTime"
	UniformReactiveLength = "uReactiveLength"
	UniformLineLength     = "uLineLength"
	UniformAdjustmentY    = "uAdjustmentY"
)

// UnknownUniformError is returned when a uniform that the material does not declare is read or written.
type UnknownUniformError struct {
	Material string
	Name     string
}

func (e *UnknownUniformError) Error() string {
	return fmt.Sprintf("material %q has no uniform %q", e.Material, e.Name)
}

// UniformSet is an ordered set of named f32 uniforms. The declaration order is the
// field order of the matching WGSL uniform struct.
type UniformSet struct {
	owner  string
	names  []string
	index  map[string]int
	values []float32
}

// NewUniformSet declares the uniforms of a material, all initialized to zero.
//
// Parameters:
//   - owner: the owning material name, used in errors
//   - names: the uniform names in WGSL struct order
//
// Returns:
//   - *UniformSet: the new set
func NewUniformSet(owner string, names ...string) *UniformSet {
	u := &UniformSet{
		owner:  owner,
		names:  append([]string(nil), names...),
		index:  make(map[string]int, len(names)),
		values: make([]float32, len(names)),
	}
	for i, n := range names {
		u.index[n] = i
	}
	return u
}

// Set writes a uniform value.
//
// Parameters:
//   - name: the uniform name
//   - value: the new value
//
// Returns:
//   - error: *UnknownUniformError if the uniform is not declared
func (u *UniformSet) Set(name string, value float32) error {
	i, ok := u.index[name]
	if !ok {
		return &UnknownUniformError{Material: u.owner, Name: name}
	}
	u.values[i] = value
	return nil
}

// Get reads a uniform value.
//
// Parameters:
//   - name: the uniform name
//
// Returns:
//   - float32: the current value
//   - error: *UnknownUniformError if the uniform is not declared
func (u *UniformSet) Get(name string) (float32, error) {
	i, ok := u.index[name]
	if !ok {
		return 0, &UnknownUniformError{Material: u.owner, Name: name}
	}
	return u.values[i], nil
}

// Has reports whether the uniform is declared.
func (u *UniformSet) Has(name string) bool {
	_, ok := u.index[name]
	return ok
}

// Names returns the declared uniform names in order.
func (u *UniformSet) Names() []string {
	return append([]string(nil), u.names...)
}

// Size returns the GPU buffer size in bytes, rounded up to the 16-byte uniform alignment.
func (u *UniformSet) Size() int {
	return (len(u.values)*4 + 15) &^ 15
}

// Marshal serializes the values in declaration order, zero-padded to Size.
//
// Returns:
//   - []byte: the buffer ready for GPU upload
func (u *UniformSet) Marshal() []byte {
	buf := make([]byte, u.Size())
	copy(buf, common.Float32sToBytes(u.values...))
	return buf
}
