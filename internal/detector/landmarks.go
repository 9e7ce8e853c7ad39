// Package detector turns hand landmarks reported by an external tracker into
// the 2-D point samples consumed by the zone layout.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a landmark position. X and Y are normalized to the
// tracker's image (0.0-1.0); Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one tracked hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// PointingLandmarks returns a right hand pointing with the index finger,
// with the fingertip at the given normalized position. The other landmarks
// trail below the fingertip, curled toward the wrist.
func PointingLandmarks(x, y float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: x - 0.02, Y: y + 0.25}

	h.Points[ThumbCMC] = Point3D{X: x + 0.03, Y: y + 0.21}
	h.Points[ThumbMCP] = Point3D{X: x + 0.05, Y: y + 0.18}
	h.Points[ThumbIP] = Point3D{X: x + 0.05, Y: y + 0.15}
	h.Points[ThumbTip] = Point3D{X: x + 0.03, Y: y + 0.13}

	h.Points[IndexMCP] = Point3D{X: x, Y: y + 0.13}
	h.Points[IndexPIP] = Point3D{X: x, Y: y + 0.08}
	h.Points[IndexDIP] = Point3D{X: x, Y: y + 0.04}
	h.Points[IndexTip] = Point3D{X: x, Y: y}

	for i, base := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		dx := -0.025 * float64(i+1)
		h.Points[base] = Point3D{X: x + dx, Y: y + 0.14, Z: -0.02}
		h.Points[base+1] = Point3D{X: x + dx, Y: y + 0.12, Z: -0.05}
		h.Points[base+2] = Point3D{X: x + dx, Y: y + 0.14, Z: -0.04}
		h.Points[base+3] = Point3D{X: x + dx, Y: y + 0.16, Z: -0.02}
	}

	return h
}
