package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Galtar27/PSMoveService/apitypes"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	apierror "github.com/Galtar27/PSMoveService/internal/server/api/error"
	"github.com/Galtar27/PSMoveService/internal/tracker"
)

// HmdState returns a handler serving one entry of a session's decoded state
// history. The optional payload is the lookback behind the newest state.
func HmdState(m *tracker.Manager) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		idStr, ok := req.Params["id"]
		if !ok {
			return apierror.ErrBadRequest("missing id parameter")
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid hmdId: %v", err))
		}

		lookback := 0
		if p := strings.TrimSpace(req.Payload); p != "" {
			lookback, err = strconv.Atoi(p)
			if err != nil || lookback < 0 {
				return apierror.ErrBadRequest(fmt.Sprintf("invalid lookback: %q", p))
			}
		}

		state, ok := m.LatestState(id, lookback)
		if !ok {
			return apierror.ErrNotFound(fmt.Sprintf("no state at lookback %d for hmd %d", lookback, id))
		}

		samples := state.Samples()
		out := apitypes.HmdStateResponse{
			HmdId:    id,
			Sequence: state.Sequence(),
			Samples:  make([]apitypes.ImuSample, 0, len(samples)),
		}
		for _, s := range samples {
			out.Samples = append(out.Samples, apitypes.ImuSample{
				RawAccel:        s.RawAccel,
				RawGyro:         s.RawGyro,
				CalibratedAccel: s.CalibratedAccel,
				CalibratedGyro:  s.CalibratedGyro,
			})
		}

		payload, err := json.Marshal(out)
		if err != nil {
			return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(payload)
		return nil
	}
}
