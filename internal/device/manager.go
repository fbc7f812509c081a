package device

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Observer receives device events, typically to export them as metrics.
type Observer interface {
	DeviceSelected(platform string, index int)
	MemoryObserved(platform string, index int, free, total uint64)
}

// Info summarizes one device.
type Info struct {
	Index    int
	Free     uint64
	Total    uint64
	Selected bool
}

// Manager tracks the selected device of a Platform.
//
// A new Manager is Uninitialized: Current reports false and no Context
// exists yet. SelectDevice moves it to DeviceSelected; there is no way back.
// A failed selection leaves the state untouched.
//
// Manager is safe for concurrent use.
type Manager struct {
	platform Platform
	logger   zerolog.Logger
	observer Observer

	mu      sync.RWMutex
	current Context
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for selection and query events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithObserver attaches an observer for selection and memory events.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// NewManager creates a Manager over platform.
func NewManager(platform Platform, opts ...Option) *Manager {
	m := &Manager{
		platform: platform,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With().Str("platform", platform.Name()).Logger()
	return m
}

// Platform returns the underlying platform.
func (m *Manager) Platform() Platform {
	return m.platform
}

// CountDevices returns the number of available devices.
func (m *Manager) CountDevices() (int, error) {
	n, err := m.platform.Count()
	if err != nil {
		return 0, m.queryError("count", -1, err)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// SelectDevice makes index the current device and returns its Context.
//
// It fails with *InvalidDeviceError when index is outside [0, CountDevices()).
func (m *Manager) SelectDevice(index int) (Context, error) {
	n, err := m.CountDevices()
	if err != nil {
		return Context{}, err
	}
	if index < 0 || index >= n {
		m.logger.Warn().Int("index", index).Int("count", n).Msg("rejected device selection")
		return Context{}, &InvalidDeviceError{Index: index, Count: n}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.platform.Bind(index); err != nil {
		return Context{}, m.queryError("bind", index, err)
	}
	m.current = NewContext(KindOf(m.platform.Name()), index, m.platform.Allocator(index))

	m.logger.Info().Int("index", index).Msg("device selected")
	if m.observer != nil {
		m.observer.DeviceSelected(m.platform.Name(), index)
	}
	return m.current, nil
}

// Current returns the selected device context, or false when no device
// has been selected yet.
func (m *Manager) Current() (Context, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current.Valid()
}

// FreeMemory returns the currently available memory on device index in bytes.
func (m *Manager) FreeMemory(index int) (uint64, error) {
	free, _, err := m.memInfo(index)
	return free, err
}

// TotalMemory returns the installed memory on device index in bytes.
func (m *Manager) TotalMemory(index int) (uint64, error) {
	_, total, err := m.memInfo(index)
	return total, err
}

// Devices returns a summary of every device on the platform.
func (m *Manager) Devices() ([]Info, error) {
	n, err := m.CountDevices()
	if err != nil {
		return nil, err
	}
	cur, selected := m.Current()

	infos := make([]Info, 0, n)
	for i := range n {
		free, total, err := m.memInfo(i)
		if err != nil {
			return nil, err
		}
		infos = append(infos, Info{
			Index:    i,
			Free:     free,
			Total:    total,
			Selected: selected && cur.Index() == i,
		})
	}
	return infos, nil
}

// memInfo validates index and queries the platform. An invalid index is a
// query failure here, wrapping the *InvalidDeviceError.
func (m *Manager) memInfo(index int) (free, total uint64, err error) {
	n, err := m.CountDevices()
	if err != nil {
		return 0, 0, err
	}
	if index < 0 || index >= n {
		return 0, 0, m.queryError("meminfo", index, &InvalidDeviceError{Index: index, Count: n})
	}

	free, total, err = m.platform.MemInfo(index)
	if err != nil {
		return 0, 0, m.queryError("meminfo", index, err)
	}
	if free > total {
		free = total
	}

	if m.observer != nil {
		m.observer.MemoryObserved(m.platform.Name(), index, free, total)
	}
	return free, total, nil
}

// queryError wraps err as a *QueryError unless it already is one.
func (m *Manager) queryError(op string, index int, err error) error {
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	m.logger.Error().Err(err).Str("op", op).Int("index", index).Msg("device query failed")
	return &QueryError{Platform: m.platform.Name(), Op: op, Index: index, Err: err}
}
