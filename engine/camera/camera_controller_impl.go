package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDampingFactor matches the easing of browser orbit controls with damping enabled.
const DefaultDampingFactor = 0.05

// settleEpsilon is the pending motion below which damping stops reporting movement.
const settleEpsilon = 1e-6

// cameraControllerImpl is the single implementation of CameraController.
// Supports both orbit and planar controls simultaneously. Orbit methods accumulate
// spherical deltas; planar methods accumulate a target offset. Update applies both.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position [3]float32
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	// Pending motion
	azimuthDelta   float32
	elevationDelta float32
	zoomScale      float32
	panOffset      mgl32.Vec3

	// Orbit constraints
	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	// Speed settings
	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	dampingFactor float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller with sensible defaults.
// The returned controller supports both orbit and planar controls simultaneously.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    100.0,
		azimuth:   0.0,
		elevation: math32.Pi / 6,
		zoomScale: 1,

		minRadius:    1.0,
		maxRadius:    1000.0,
		minElevation: -math32.Pi/2 + 0.01,
		maxElevation: math32.Pi/2 - 0.01,

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.95,
		panSpeed:         0.05,

		dampingFactor: DefaultDampingFactor,
	}

	for _, option := range options {
		option(cc)
	}

	cc.clampSpherical()
	cc.updatePosition()
	return cc
}

// --- internal helpers ---

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// setFromPosition derives radius, azimuth and elevation from a position relative to the target.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) setFromPosition(p mgl32.Vec3) {
	offset := p.Sub(cc.target)
	r := offset.Len()
	if r < 1e-8 {
		return
	}
	cc.radius = r
	cc.azimuth = math32.Atan2(offset[0], offset[2])
	cc.elevation = math32.Asin(mgl32.Clamp(offset[1]/r, -1, 1))
}

// clampSpherical keeps radius and elevation inside their bounds.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clampSpherical() {
	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
}

// localAxes computes the camera's right and up axes consistent with the LookAt matrix.
// If position and target coincide, both are zero.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up mgl32.Vec3) {
	backward := mgl32.Vec3(cc.position).Sub(cc.target)
	if backward.Len() < 1e-8 {
		return
	}
	backward = backward.Normalize()

	right = mgl32.Vec3{0, 1, 0}.Cross(backward)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = backward.Cross(right)
	return right, up
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.setFromPosition(mgl32.Vec3{x, y, z})
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target[0], cc.target[1], cc.target[2]
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = mgl32.Vec3{x, y, z}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	// Positive delta shrinks the radius by zoomSpeed per unit.
	cc.zoomScale *= math32.Pow(cc.zoomSpeed, delta)
}

func (cc *cameraControllerImpl) Update() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	before := cc.position
	beforeTarget := cc.target
	f := cc.dampingFactor

	cc.azimuth += cc.azimuthDelta * f
	cc.elevation += cc.elevationDelta * f
	cc.radius *= cc.zoomScale
	cc.target = cc.target.Add(cc.panOffset.Mul(f))
	cc.clampSpherical()
	cc.updatePosition()

	cc.azimuthDelta *= 1 - f
	cc.elevationDelta *= 1 - f
	cc.panOffset = cc.panOffset.Mul(1 - f)
	cc.zoomScale = 1
	if math32.Abs(cc.azimuthDelta) < settleEpsilon {
		cc.azimuthDelta = 0
	}
	if math32.Abs(cc.elevationDelta) < settleEpsilon {
		cc.elevationDelta = 0
	}
	if cc.panOffset.Len() < settleEpsilon {
		cc.panOffset = mgl32.Vec3{}
	}

	return before != cc.position || beforeTarget != cc.target
}

func (cc *cameraControllerImpl) DampingFactor() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dampingFactor
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuthDelta -= cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuthDelta += cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevationDelta += cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevationDelta -= cc.orbitSpeed
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	// Dragging right swings the camera left around the target, like grabbing the scene.
	cc.azimuthDelta -= dx * cc.mouseSensitivity
	cc.elevationDelta += dy * cc.mouseSensitivity
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = radius
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

// --- planarCameraController implementation ---

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _ := cc.localAxes()
	cc.panOffset = cc.panOffset.Add(right.Mul(delta * cc.panSpeed))
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up := cc.localAxes()
	cc.panOffset = cc.panOffset.Add(up.Mul(delta * cc.panSpeed))
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}
