// Package tracker owns the device sessions of the service: it rescans the
// HID bus for supported peripherals, opens driver sessions for them, polls
// the open sessions on a fixed interval, and force-closes a session whose
// consecutive poll failures exceed the driver's threshold.
package tracker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/log"
)

// Config is the tracker section of the service configuration.
type Config struct {
	PollInterval   time.Duration `help:"Interval between device poll passes." default:"2ms"`
	RescanInterval time.Duration `help:"Interval between HID bus rescans." default:"1s"`
	SettingsDir    string        `help:"Directory holding per-device calibration files." type:"path"`
}

// EnumerateFunc lists the current HID bus candidates.
type EnumerateFunc func() ([]hid.Enumerator, error)

// Snapshot is the API-facing summary of one managed session.
type Snapshot struct {
	ID   int
	Kind hid.DeviceKind
	Path string
	Open bool
}

// Manager runs the device lifecycle. All session access goes through the
// manager's lock; the sessions themselves are single-owner.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	raw    log.RawLogger

	// Opener and Enumerate may be replaced before Run for testing.
	Opener    hid.Opener
	Enumerate EnumerateFunc

	mu       sync.Mutex
	sessions map[int]device.Tracked
	failures map[int]int
	nextID   int
}

// New constructs a manager with no sessions.
func New(cfg Config, logger *slog.Logger, raw log.RawLogger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Manager{
		cfg:       cfg,
		logger:    logger.With("component", "tracker"),
		raw:       raw,
		Opener:    hid.DefaultOpener(),
		Enumerate: hid.Enumerate,
		sessions:  make(map[int]device.Tracked),
		failures:  make(map[int]int),
	}
}

// Run polls and rescans until the context is cancelled, then closes every
// session.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Rescan(); err != nil {
		m.logger.Error("initial bus scan failed", "err", err)
	}

	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()
	rescan := time.NewTicker(m.cfg.RescanInterval)
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-poll.C:
			m.PollOnce()
		case <-rescan.C:
			if err := m.Rescan(); err != nil {
				m.logger.Error("bus scan failed", "err", err)
			}
		}
	}
}

// Rescan enumerates the bus and opens a session for every candidate that is
// not already owned. A candidate matching an existing closed session reopens
// that session instead of creating a new one.
func (m *Manager) Rescan() error {
	candidates, err := m.Enumerate()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, enum := range candidates {
		if m.claimedLocked(enum) {
			continue
		}

		if id, s := m.matchingClosedLocked(enum); s != nil {
			if err := s.Open(enum); err != nil {
				m.logger.Warn("failed to reopen device", "id", id, "path", enum.Path(), "err", err)
			} else {
				m.failures[id] = 0
			}
			continue
		}

		s, err := device.NewForKind(enum.DeviceKind(), device.Options{
			Opener:      m.Opener,
			SettingsDir: m.cfg.SettingsDir,
			Logger:      m.logger,
			RawLogger:   m.raw,
		})
		if err != nil {
			m.logger.Warn("no driver for device", "kind", enum.DeviceKind(), "path", enum.Path())
			continue
		}
		if err := s.Open(enum); err != nil {
			m.logger.Warn("failed to open device", "path", enum.Path(), "err", err)
			continue
		}

		id := m.nextID
		m.nextID++
		m.sessions[id] = s
		m.failures[id] = 0
		m.logger.Info("tracking device", "id", id, "kind", s.Kind(), "path", s.Identifier())
	}
	return nil
}

// claimedLocked reports whether an open session already owns the candidate.
func (m *Manager) claimedLocked(enum hid.Enumerator) bool {
	for _, s := range m.sessions {
		if s.IsOpen() && s.Matches(enum) {
			return true
		}
	}
	return false
}

func (m *Manager) matchingClosedLocked(enum hid.Enumerator) (int, device.Tracked) {
	for id, s := range m.sessions {
		if !s.IsOpen() && s.Matches(enum) {
			return id, s
		}
	}
	return 0, nil
}

// PollOnce polls every open session once. A session whose consecutive
// failures reach its own threshold is force-closed; the next rescan may
// reopen it.
func (m *Manager) PollOnce() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if !s.IsOpen() {
			continue
		}
		if s.Poll() != device.PollFailure {
			m.failures[id] = 0
			continue
		}
		m.failures[id]++
		if m.failures[id] >= s.MaxPollFailureCount() {
			m.logger.Warn("too many consecutive poll failures, closing device",
				"id", id, "path", s.Identifier(), "failures", m.failures[id])
			s.Close()
			m.failures[id] = 0
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.Close()
	}
}

// Snapshots lists the managed sessions ordered by ID.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0, len(m.sessions))
	for id, s := range m.sessions {
		out = append(out, Snapshot{
			ID:   id,
			Kind: s.Kind(),
			Path: s.Identifier(),
			Open: s.IsOpen(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LatestState returns the decoded state lookback entries behind the newest
// for a session, or false when the session or state does not exist.
func (m *Manager) LatestState(id, lookback int) (device.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return s.State(lookback)
}

// TrackingInfo returns the optical tracking descriptors of a session.
func (m *Manager) TrackingInfo(id int) (device.TrackingShape, device.TrackingColor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return device.TrackingShape{}, 0, false
	}
	return s.TrackingShape(), s.TrackingColor(), true
}
