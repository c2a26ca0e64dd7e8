// internal/driver/manager.go

// Package driver owns the load/unload lifecycle of the SPI simulator
// kernel module: insert it, wait for its device node, open up the node's
// permissions, and remove it again.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/spisim-control/internal/clock"
	"github.com/tamzrod/spisim-control/internal/devnode"
	"github.com/tamzrod/spisim-control/internal/process"
	"github.com/tamzrod/spisim-control/internal/sequence"
)

// Caller-visible messages.
const (
	MsgLoaded          = "driver loaded"
	MsgUnloaded        = "driver unloaded"
	MsgDeviceNotFound  = "device not created"
	MsgNameRequired    = "device name required"
	MsgInvalidName     = "invalid device name"
	MsgSequencesSaved  = "sequences updated"
	MsgSequencesFailed = "failed to update sequences"
)

var (
	// ErrDriverMissing is returned by New when the module artifact is absent.
	ErrDriverMissing = errors.New("driver: module artifact not found")

	// ErrInvalidName rejects device names that are not a single path element.
	ErrInvalidName = errors.New("driver: invalid device name")
)

// Config describes the module and where its device node appears.
type Config struct {
	DriverPath  string // path of the .ko passed to insmod
	ModuleName  string // name reported by lsmod and passed to rmmod
	DeviceRoot  string // directory holding the device node
	Permissions string // chmod mode applied to the node

	DevicePoll time.Duration
	DeviceWait time.Duration
}

// Defaults for a zero Config.
const (
	DefaultModuleName  = "spi_simulator_driver"
	DefaultDeviceRoot  = "/dev"
	DefaultPermissions = "666"
	DefaultDevicePoll  = 100 * time.Millisecond
	DefaultDeviceWait  = time.Second
)

// Manager is the single owner of driver state. Transitions (Load,
// Unload, SaveSequences) are serialized; queries read a consistent
// snapshot without waiting for a transition to finish.
type Manager struct {
	cfg    Config
	runner process.Runner
	store  sequence.Store
	waiter *devnode.Waiter
	log    *slog.Logger

	opMu sync.Mutex // held for a whole transition

	mu         sync.RWMutex // guards state, deviceName and gen
	state      State
	deviceName string
	gen        uint64 // bumped on every state write
}

// New validates the driver artifact and builds a Manager in the
// Unloaded state. A nil clock means the real one.
func New(cfg Config, runner process.Runner, store sequence.Store, c clock.Clock, logger *slog.Logger) (*Manager, error) {
	if runner == nil {
		return nil, errors.New("driver: process runner required")
	}
	if cfg.DriverPath == "" {
		return nil, fmt.Errorf("%w: path not configured", ErrDriverMissing)
	}
	if _, err := os.Stat(cfg.DriverPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDriverMissing, cfg.DriverPath, err)
	}

	if cfg.ModuleName == "" {
		cfg.ModuleName = DefaultModuleName
	}
	if cfg.DeviceRoot == "" {
		cfg.DeviceRoot = DefaultDeviceRoot
	}
	if cfg.Permissions == "" {
		cfg.Permissions = DefaultPermissions
	}
	if cfg.DevicePoll <= 0 {
		cfg.DevicePoll = DefaultDevicePoll
	}
	if cfg.DeviceWait <= 0 {
		cfg.DeviceWait = DefaultDeviceWait
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := devnode.New(devnode.Config{
		Interval: cfg.DevicePoll,
		Deadline: cfg.DeviceWait,
	}, c)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:    cfg,
		runner: runner,
		store:  store,
		waiter: w,
		log:    logger,
		state:  Unloaded,
	}, nil
}

// DriverPath returns the configured module artifact.
func (m *Manager) DriverPath() string { return m.cfg.DriverPath }

// ---- queries ----

// State returns the cached lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// DeviceName returns the device name of the loaded module, or "".
func (m *Manager) DeviceName() string {
	name, _ := m.snapshot()
	return name
}

// DevicePath returns <device-root>/<deviceName> while the module is
// loaded (or being unloaded), "" otherwise.
func (m *Manager) DevicePath() string {
	_, path := m.snapshot()
	return path
}

func (m *Manager) snapshot() (name, path string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.deviceName == "" || (m.state != Loaded && m.state != Unloading) {
		return "", ""
	}
	return m.deviceName, m.pathFor(m.deviceName)
}

func (m *Manager) pathFor(name string) string {
	return filepath.Join(m.cfg.DeviceRoot, name)
}

// IsLoaded asks the module listing whether the module is present. The
// cached state is reconciled against the answer: a Loaded cache whose
// module has disappeared becomes Unloaded. A listing taken before a
// transition that finished while it ran is not applied.
func (m *Manager) IsLoaded(ctx context.Context) bool {
	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	loaded := m.queryLoaded(ctx)

	if !loaded {
		m.mu.Lock()
		if m.state == Loaded && m.gen == gen {
			m.log.Warn("module no longer listed, clearing device", "device", m.deviceName)
			m.state = Unloaded
			m.deviceName = ""
			m.gen++
		}
		m.mu.Unlock()
	}
	return loaded
}

func (m *Manager) queryLoaded(ctx context.Context) bool {
	argv := []string{"lsmod"}
	res, err := m.runner.Execute(ctx, argv)
	if err != nil {
		m.log.Error("module listing failed", "error", err)
		return false
	}
	if !res.OK() {
		m.log.Error("module listing failed", "error", res.Err(argv))
		return false
	}
	return strings.Contains(res.Stdout, m.cfg.ModuleName)
}

// ---- transitions ----

// Load inserts the module for deviceName, waits for its node and sets
// its permissions. Non-empty seqs are validated and persisted first;
// invalid seqs reject the call before any side effect, while a persist
// failure is logged and does not stop the load. A module that is
// already loaded is removed first.
//
// Any failure after a successful insert removes the module again, so a
// failed Load always leaves the manager Unloaded with no device path.
func (m *Manager) Load(ctx context.Context, deviceName string, seqs []sequence.Sequence) Result {
	if deviceName == "" {
		return fail(MsgNameRequired, ErrInvalidName)
	}
	if !validName(deviceName) {
		return fail(MsgInvalidName, fmt.Errorf("%w: %q", ErrInvalidName, deviceName))
	}
	if err := sequence.Validate(seqs); err != nil {
		m.log.Warn("rejected sequences", "error", err)
		return fail(MsgSequencesFailed+": "+err.Error(), err)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.log.Info("starting driver load", "device", deviceName)

	if len(seqs) > 0 {
		if err := m.persist(seqs); err != nil {
			m.log.Warn("failed to save sequences, continuing", "error", err)
		}
	}

	if m.IsLoaded(ctx) {
		m.log.Info("unloading existing driver")
		if r := m.unloadLocked(ctx); !r.OK {
			m.log.Warn("could not unload existing driver", "error", r.Message)
		}
	}

	m.setState(Loading, "")

	m.log.Info("loading driver", "path", m.cfg.DriverPath)
	insmod := []string{"insmod", m.cfg.DriverPath, "device_name=" + deviceName}
	if err := m.run(ctx, insmod); err != nil {
		m.setState(Unloaded, "")
		m.log.Error("error loading driver", "error", err)
		return fail("error loading driver: "+detail(err), err)
	}

	path := m.pathFor(deviceName)
	if err := m.waiter.Wait(ctx, path); err != nil {
		m.log.Error("device node did not appear", "path", path, "error", err)
		msg := MsgDeviceNotFound
		if !errors.Is(err, devnode.ErrTimeout) {
			msg = "device wait aborted: " + err.Error()
		}
		return m.rollback(ctx, msg, err)
	}

	m.log.Info("setting device permissions", "path", path, "mode", m.cfg.Permissions)
	chmod := []string{"chmod", m.cfg.Permissions, path}
	if err := m.run(ctx, chmod); err != nil {
		m.log.Error("error setting device permissions", "error", err)
		return m.rollback(ctx, "error setting device permissions: "+detail(err), err)
	}

	m.setState(Loaded, deviceName)
	m.log.Info("driver loaded", "device", deviceName, "path", path)
	return ok(MsgLoaded)
}

// rollback removes a module inserted by a Load that failed later on.
// The manager ends Unloaded whether or not the removal succeeds.
func (m *Manager) rollback(ctx context.Context, msg string, cause error) Result {
	errs := []string{msg}

	rmmod := []string{"rmmod", m.cfg.ModuleName}
	if err := m.run(context.WithoutCancel(ctx), rmmod); err != nil {
		m.log.Error("rollback unload failed", "error", err)
		errs = append(errs, "rollback failed: "+detail(err))
	} else {
		m.log.Info("rolled back driver load")
	}

	m.setState(Unloaded, "")
	return fail(strings.Join(errs, " | "), cause)
}

// Unload removes the module. It is idempotent: when the module is not
// listed it only clears the device name and runs no removal command.
func (m *Manager) Unload(ctx context.Context) Result {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.unloadLocked(ctx)
}

func (m *Manager) unloadLocked(ctx context.Context) Result {
	m.log.Info("attempting to unload driver")

	if !m.IsLoaded(ctx) {
		m.log.Info("driver is not loaded")
		m.setState(Unloaded, "")
		return ok(MsgUnloaded)
	}

	m.mu.Lock()
	prevState, prevName := m.state, m.deviceName
	m.state = Unloading
	m.gen++
	m.mu.Unlock()

	rmmod := []string{"rmmod", m.cfg.ModuleName}
	if err := m.run(ctx, rmmod); err != nil {
		m.setState(prevState, prevName)
		m.log.Error("error unloading driver", "error", err)
		return fail("error unloading driver: "+detail(err), err)
	}

	m.setState(Unloaded, "")
	m.log.Info("driver unloaded")
	return ok(MsgUnloaded)
}

// SaveSequences validates and persists seqs without touching the module.
// The module reads them on its next load.
func (m *Manager) SaveSequences(seqs []sequence.Sequence) Result {
	if err := sequence.Validate(seqs); err != nil {
		m.log.Warn("rejected sequences", "error", err)
		return fail(MsgSequencesFailed+": "+err.Error(), err)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.persist(seqs); err != nil {
		m.log.Error("error saving sequences", "error", err)
		return fail(MsgSequencesFailed, err)
	}
	return ok(MsgSequencesSaved)
}

func (m *Manager) persist(seqs []sequence.Sequence) error {
	if m.store == nil {
		return errors.New("driver: no sequence store configured")
	}
	return m.store.Persist(seqs)
}

func (m *Manager) setState(s State, name string) {
	m.mu.Lock()
	m.state = s
	m.deviceName = name
	m.gen++
	m.mu.Unlock()
}

// run executes argv and folds a non-zero exit into the error.
func (m *Manager) run(ctx context.Context, argv []string) error {
	res, err := m.runner.Execute(ctx, argv)
	if err != nil {
		return err
	}
	return res.Err(argv)
}

// detail extracts the stderr text of a failed command for callers.
func detail(err error) string {
	var pe *process.ProcessError
	if errors.As(err, &pe) && pe.Stderr != "" {
		return pe.Stderr
	}
	return err.Error()
}

func validName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00 \t\r\n")
}
