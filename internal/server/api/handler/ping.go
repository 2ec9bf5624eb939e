package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Galtar27/PSMoveService/apitypes"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/version"
)

// Ping returns a handler that reports server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		payload := apitypes.PingResponse{Server: "PSMoveService", Version: version.Get()}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
