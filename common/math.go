package common

import (
	"encoding/binary"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	id := mgl32.Ident4()
	copy(m, id[:])
}

// mat4 copies a column-major flat slice into an mgl32 matrix.
func mat4(s []float32) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], s)
	return m
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Float32sToBytes encodes float32 values as little-endian bytes, the layout WGSL expects for f32 data.
//
// Parameters:
//   - values: the values to encode
//
// Returns:
//   - []byte: a newly allocated buffer of len(values)*4 bytes
func Float32sToBytes(values ...float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(v))
	}
	return buf
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	m := mat4(a).Mul4(mat4(b))
	copy(out, m[:])
}

// Perspective creates a right-handed perspective projection matrix mapping depth into
// the WebGPU clip space range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1 / math32.Tan(fovY/2)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// ComposeMatrix builds a column-major model matrix from a translation, a unit quaternion and a scale,
// in the translate * rotate * scale order glTF nodes use.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - t: translation
//   - q: rotation quaternion as (x, y, z, w)
//   - s: scale factors
func ComposeMatrix(out []float32, t [3]float32, q [4]float32, s [3]float32) {
	rot := mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}.Mat4()
	m := mgl32.Translate3D(t[0], t[1], t[2]).Mul4(rot).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	copy(out, m[:])
}

// TransformPoint applies a column-major 4x4 matrix to a point with w = 1, without the
// perspective divide.
//
// Parameters:
//   - m: the matrix (16 elements)
//   - p: the point to transform
//
// Returns:
//   - [3]float32: the transformed point
func TransformPoint(m []float32, p [3]float32) [3]float32 {
	return [3]float32(mat4(m).Mul4x1(mgl32.Vec3(p).Vec4(1)).Vec3())
}

// MaxScale returns the largest axis scale encoded in the upper 3x3 of a column-major matrix.
//
// Parameters:
//   - m: the matrix (16 elements)
//
// Returns:
//   - float32: the largest column length of the rotation-scale block
func MaxScale(m []float32) float32 {
	mm := mat4(m)
	var largest float32
	for c := range 3 {
		largest = math32.Max(largest, mm.Col(c).Vec3().Len())
	}
	return largest
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	m := mgl32.LookAt(eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ)
	copy(out, m[:])
}
