package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Galtar27/PSMoveService/apitypes"
	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	apierror "github.com/Galtar27/PSMoveService/internal/server/api/error"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

// HmdTracking returns a handler describing the optical tracking setup of a
// session: its trackable geometry and assigned LED color.
func HmdTracking(m *tracker.Manager) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		idStr, ok := req.Params["id"]
		if !ok {
			return apierror.ErrBadRequest("missing id parameter")
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid hmdId: %v", err))
		}

		shape, color, ok := m.TrackingInfo(id)
		if !ok {
			return apierror.ErrNotFound(fmt.Sprintf("hmd %d not found", id))
		}

		out := apitypes.HmdTrackingResponse{
			HmdId: id,
			Color: color.String(),
		}
		switch shape.Type {
		case device.ShapePointCloud:
			out.ShapeType = "pointcloud"
			out.Points = shape.Points
		default:
			out.ShapeType = "sphere"
			out.SphereRadius = shape.SphereRadius
		}

		payload, err := json.Marshal(out)
		if err != nil {
			return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(payload)
		return nil
	}
}
