package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Hmd summarizes one tracked device session.
type Hmd struct {
	HmdId int    `json:"hmdId"`
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Open  bool   `json:"open"`
}

type HmdListResponse struct {
	Hmds []Hmd `json:"hmds"`
}

// ImuSample is one decoded inertial reading: raw sensor counts plus the
// gain-calibrated vectors.
type ImuSample struct {
	RawAccel        [3]int32   `json:"rawAccel"`
	RawGyro         [3]int32   `json:"rawGyro"`
	CalibratedAccel [3]float64 `json:"calibratedAccel"`
	CalibratedGyro  [3]float64 `json:"calibratedGyro"`
}

// HmdStateResponse is one entry of a session's decoded state history.
type HmdStateResponse struct {
	HmdId    int         `json:"hmdId"`
	Sequence uint32      `json:"sequence"`
	Samples  []ImuSample `json:"samples"`
}

// HmdTrackingResponse describes the optical tracking setup of a session.
type HmdTrackingResponse struct {
	HmdId        int          `json:"hmdId"`
	ShapeType    string       `json:"shapeType"`
	SphereRadius float64      `json:"sphereRadius,omitempty"`
	Points       [][3]float64 `json:"points,omitempty"`
	Color        string       `json:"color"`
}
