package camera

import (
	"github.com/Carmen-Shannon/scrollbot/common"
)

// GPUCameraUniformSize is the byte size of the camera uniform block at group 0.
const GPUCameraUniformSize = 80

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout in the camera chunk.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset  0: combined view-projection matrix (mat4x4<f32>)
	CameraPosition [3]float32  // offset 64: world-space camera position (vec3<f32>), padded to vec4
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer (80 bytes)
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, 0, GPUCameraUniformSize)
	buf = append(buf, common.Float32sToBytes(g.ViewProj[:]...)...)
	buf = append(buf, common.Float32sToBytes(g.CameraPosition[0], g.CameraPosition[1], g.CameraPosition[2], 1)...)
	return buf
}
