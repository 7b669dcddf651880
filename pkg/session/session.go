// Package session owns the state of one managed game directory: its
// manifest, the background runtime install and the readiness poller.
//
// A Session is driven from a single goroutine. Background work reports back
// only through a task.Slot and a poller.Flag, which Tick inspects.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ratmods/modman/pkg/installer"
	"github.com/ratmods/modman/pkg/layout"
	"github.com/ratmods/modman/pkg/loader"
	"github.com/ratmods/modman/pkg/manifest"
	"github.com/ratmods/modman/pkg/poller"
	"github.com/ratmods/modman/pkg/source"
	"github.com/ratmods/modman/pkg/store"
	"github.com/ratmods/modman/pkg/task"
	"github.com/rs/zerolog"
)

// Status lines shown to the user.
const (
	MsgRuntimeRequired  = "Install BepInEx first to manage mods."
	MsgUnsupported      = "Only .zip or .dll files are supported."
	MsgModInstalled     = "Mod installed."
	MsgRuntimeInstalled = "BepInEx installed and validated."
	MsgWaitingReady     = "Checking for BepInEx readiness in background..."
	MsgReady            = "BepInEx is now ready! Mods tab enabled."
)

var (
	// ErrBusy is returned when a runtime install is still running.
	ErrBusy = errors.New("an install is already running")
	// ErrRuntimeMissing is returned by mod operations before the runtime
	// is installed.
	ErrRuntimeMissing = errors.New("runtime is not installed")
)

type Options struct {
	GameDir string
	// PollInterval is the readiness check period; zero means
	// poller.DefaultInterval.
	PollInterval time.Duration
	Log          zerolog.Logger
}

type Session struct {
	root         string
	pollInterval time.Duration
	// base is the caller's logger; components add their own fields to it.
	base         zerolog.Logger
	log          zerolog.Logger

	manifest  *manifest.Manifest
	installer *installer.Installer

	busy   bool
	slot   *task.Slot
	ready  *poller.Flag
	poller *poller.Poller
	// announced is set once the poller's success has been reported.
	announced bool

	status []string

	ctx    context.Context
	cancel context.CancelFunc
}

// New opens a session for opts.GameDir. The manifest is loaded from disk;
// a missing or corrupt manifest starts empty.
func New(ctx context.Context, opts Options) *Session {
	ctx, cancel := context.WithCancel(ctx)
	log := opts.Log.With().Str("component", "session").Logger()

	m := manifest.Load(opts.GameDir)
	s := &Session{
		root:         opts.GameDir,
		pollInterval: opts.PollInterval,
		base:         opts.Log,
		log:          log,
		manifest:     m,
		installer: &installer.Installer{
			Store:    store.New(opts.GameDir),
			Manifest: m,
			Log:      opts.Log,
		},
		ready:  &poller.Flag{},
		ctx:    ctx,
		cancel: cancel,
	}
	if loader.IsInstalled(opts.GameDir) {
		s.ready.Set()
		s.announced = true
	}

	log.Debug().Str("game_dir", opts.GameDir).Int("mods", len(m.Mods)).Bool("ready", s.Ready()).Msg("Session opened")
	return s
}

// Close stops the readiness poller. A running install is not interrupted.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) Root() string {
	return s.root
}

func (s *Session) Manifest() *manifest.Manifest {
	return s.manifest
}

func (s *Session) Installer() *installer.Installer {
	return s.installer
}

// Busy reports whether a runtime install is outstanding.
func (s *Session) Busy() bool {
	return s.busy
}

// Ready reports whether mods can be managed.
func (s *Session) Ready() bool {
	return s.ready.Ready()
}

// RuntimeStatus re-derives the runtime status from disk.
func (s *Session) RuntimeStatus() string {
	return loader.Status(s.root)
}

// Status returns the status lines logged so far.
func (s *Session) Status() []string {
	return s.status
}

// Polling reports whether a readiness poller has been started.
func (s *Session) Polling() bool {
	return s.poller != nil
}

// TaskDone is closed when the outstanding runtime install has finished. It
// is nil when no install was started.
func (s *Session) TaskDone() <-chan struct{} {
	if s.slot == nil {
		return nil
	}
	return s.slot.Done()
}

// PollerDone is closed when the readiness poller exits. It is nil when no
// poller was started.
func (s *Session) PollerDone() <-chan struct{} {
	if s.poller == nil {
		return nil
	}
	return s.poller.Done()
}

func (s *Session) say(msg string) {
	s.status = append(s.status, msg)
	s.log.Info().Str("status", msg).Msg(msg)
}

// StartRuntimeInstall fetches and installs the runtime from src in the
// background. It returns the task id, or ErrBusy while a previous install
// has not been collected by Tick.
func (s *Session) StartRuntimeInstall(src source.Source) (string, error) {
	if s.busy {
		return "", ErrBusy
	}

	slot := task.NewSlot()
	root := s.root
	log := s.log
	base := s.base
	ctx := s.ctx

	id, err := slot.Start(func() error {
		fetched, err := src.Fetch(ctx)
		if err != nil {
			return err
		}
		log.Info().Str("archive", fetched.Name).Str("origin", fetched.Origin).Int("bytes", len(fetched.Data)).Msg("Runtime archive fetched")

		li := &loader.Installer{Root: root, Log: base}
		warnings, err := li.Install(fetched.Data)
		if werr := warnings.Err(); werr != nil {
			log.Warn().Err(werr).Msg("Runtime install steps skipped")
		}
		return err
	})
	if err != nil {
		return "", err
	}

	s.busy = true
	s.slot = slot
	s.log.Info().Str("task", id).Msg("Runtime install started")
	return id, nil
}

// Tick collects background results. It reports the readiness transition
// and, when the install task has finished, returns its result.
func (s *Session) Tick() (task.Result, bool) {
	if !s.announced && s.ready.Ready() {
		s.announced = true
		s.say(MsgReady)
	}

	if s.slot == nil {
		return task.Result{}, false
	}
	res, ok := s.slot.Take()
	if !ok {
		return task.Result{}, false
	}
	s.busy = false
	s.slot = nil

	log := s.log.With().Str("task", res.ID).Int64("duration_ms", res.Elapsed.Milliseconds()).Logger()
	if res.Err != nil {
		log.Error().Err(res.Err).Msg("Runtime install failed")
		s.say(fmt.Sprintf("BepInEx install failed: %v", res.Err))
		return res, true
	}

	s.say(MsgRuntimeInstalled)
	if loader.IsInstalled(s.root) {
		if s.ready.Set() {
			s.announced = true
		}
		return res, true
	}

	s.say(MsgWaitingReady)
	s.startPoller()
	return res, true
}

func (s *Session) startPoller() {
	if s.poller != nil {
		return
	}
	root := s.root
	s.poller = poller.New(func() bool { return loader.IsInstalled(root) }, s.ready, s.pollInterval, s.base)
	s.poller.Start(s.ctx)
}

// DropResult is the outcome for one dropped file.
type DropResult struct {
	Path   string
	Result *installer.Result
	Err    error
}

// Drop installs each file in paths as a mod. Only zip archives and native
// libraries are accepted. It fails as a whole while a runtime install is
// running or before the runtime is ready; otherwise failures are reported
// per file.
func (s *Session) Drop(paths []string) ([]DropResult, error) {
	if s.busy {
		return nil, ErrBusy
	}
	if !s.Ready() {
		s.say(MsgRuntimeRequired)
		return nil, ErrRuntimeMissing
	}

	results := make([]DropResult, 0, len(paths))
	for _, p := range paths {
		r := DropResult{Path: p}
		if !layout.HasExt(p, layout.ArchiveExt) && !layout.HasExt(p, layout.NativeLibraryExt) {
			s.say(MsgUnsupported)
			r.Err = installer.ErrUnsupportedFile
			results = append(results, r)
			continue
		}

		r.Result, r.Err = s.installer.Install(p)
		if r.Err != nil {
			s.say(fmt.Sprintf("Install failed: %v", r.Err))
		} else {
			for _, w := range r.Result.Warnings {
				s.log.Warn().Str("op", w.Op).Err(w.Err).Str("package", r.Result.Entry.ID).Msg("Install step skipped")
			}
			s.say(MsgModInstalled)
		}
		results = append(results, r)
	}
	return results, nil
}

// Uninstall removes the mod at idx. An index out of range is a no-op.
func (s *Session) Uninstall(idx int) (*installer.UninstallResult, bool) {
	res, ok := s.installer.Uninstall(idx)
	if !ok {
		return nil, false
	}
	for _, w := range res.Warnings {
		s.log.Warn().Str("op", w.Op).Err(w.Err).Str("package", res.Entry.ID).Msg("Uninstall step skipped")
	}
	if res.Nothing() {
		s.say(fmt.Sprintf("Nothing to remove for %s", res.Entry.DisplayName()))
	} else {
		s.say(fmt.Sprintf("Uninstalled %s", res.Entry.DisplayName()))
	}
	return res, true
}
