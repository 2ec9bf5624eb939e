package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Galtar27/PSMoveService/apitypes"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	apierror "github.com/Galtar27/PSMoveService/internal/server/api/error"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

// HmdList returns a handler that lists the managed device sessions.
// Error logging is centralized in the API server.
func HmdList(m *tracker.Manager) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		snaps := m.Snapshots()
		out := make([]apitypes.Hmd, 0, len(snaps))
		for _, s := range snaps {
			out = append(out, apitypes.Hmd{
				HmdId: s.ID,
				Kind:  s.Kind.String(),
				Path:  s.Path,
				Open:  s.Open,
			})
		}
		payload, err := json.Marshal(apitypes.HmdListResponse{Hmds: out})
		if err != nil {
			return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(payload)
		return nil
	}
}
