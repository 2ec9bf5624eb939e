package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/Galtar27/PSMoveService/internal/configpaths"
	"github.com/Galtar27/PSMoveService/internal/log"
	"github.com/Galtar27/PSMoveService/internal/server/api"
	"github.com/Galtar27/PSMoveService/internal/server/api/auth"
	"github.com/Galtar27/PSMoveService/internal/server/api/handler"
	"github.com/Galtar27/PSMoveService/internal/tracker"
	"github.com/Galtar27/PSMoveService/internal/util"
)

const keyFileName = "psmoveservice.key.txt"

// Serve runs the tracking service: the device manager plus the TCP API.
type Serve struct {
	TrackerConfig   tracker.Config   `embed:"" prefix:"tracker."`
	ApiServerConfig api.ServerConfig `embed:"" prefix:"api."`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("Starting PSMoveService tracking server", "addr", s.ApiServerConfig.Addr)

	if s.ApiServerConfig.Password == "" {
		keyFileDir, err := configpaths.DefaultConfigDir()
		if err != nil {
			return fmt.Errorf("failed to resolve key file path: %w", err)
		}
		keyFilePath := path.Join(keyFileDir, keyFileName)
		if pwd, err := os.ReadFile(keyFilePath); err == nil {
			s.ApiServerConfig.Password = strings.TrimSpace(string(pwd))
		} else {
			newPwd, err := auth.GenerateKey()
			if err != nil {
				return fmt.Errorf("failed to generate new API password: %w", err)
			}
			if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
				return fmt.Errorf("failed to create config dir for key file: %w", err)
			}
			if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
				return fmt.Errorf("failed to write new API password to file: %w", err)
			}
			s.ApiServerConfig.Password = newPwd
			logger.Info("Generated API server password", "path", keyFilePath)
			logger.Info("-------------------------------------")
			logger.Info("Your PSMoveService API password is:")
			logger.Info("-------------------------------------")
			logger.Info(newPwd)
			logger.Info("-------------------------------------")
			logger.Info("You can change this password at any time by editing the file")
		}
	}

	if s.TrackerConfig.SettingsDir == "" {
		dir, err := configpaths.DefaultConfigDir()
		if err != nil {
			return fmt.Errorf("failed to resolve settings dir: %w", err)
		}
		s.TrackerConfig.SettingsDir = path.Join(dir, "devices")
	}

	manager := tracker.New(s.TrackerConfig, logger, rawLogger)

	if s.ApiServerConfig.Addr == "" {
		logger.Error("API server address must be set (default :9512).")
		return fmt.Errorf("API server address must be set (default :9512)")
	}

	apiSrv, err := api.New(manager, s.ApiServerConfig, logger)
	if err != nil {
		return err
	}
	r := apiSrv.Router()
	r.Register("ping", handler.Ping())
	r.Register("hmd/list", handler.HmdList(manager))
	r.Register("hmd/{id}/state", handler.HmdState(manager))
	r.Register("hmd/{id}/tracking", handler.HmdTracking(manager))

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		if util.IsRunFromGUI() {
			fmt.Println("Press any key to exit...")
			var b []byte = make([]byte, 1)
			_, _ = os.Stdin.Read(b)
		}
		return err
	}
	defer apiSrv.Close()

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	return manager.Run(ctx)
}
