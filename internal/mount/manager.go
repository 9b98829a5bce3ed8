package mount

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"borgtool/internal/credentials"
	"borgtool/internal/logging"
	"borgtool/internal/repo"
	"borgtool/internal/services"
)

// Engine performs the FUSE operations.
type Engine interface {
	Mount(ctx context.Context, rc repo.Context, archive, mountpoint string, pass credentials.Passphrase) error
	Umount(ctx context.Context, rc repo.Context, mountpoint string, pass credentials.Passphrase) error
	MountSupported(ctx context.Context, rc repo.Context) (bool, error)
}

// Session is the archive currently mounted by this process.
type Session struct {
	Archive    string
	Mountpoint string
	Repository repo.Context
	MountedAt  time.Time
}

func (s Session) String() string {
	return fmt.Sprintf("%s @ %s", s.Archive, s.Mountpoint)
}

// Manager owns the single mount slot of an interactive session. It is not
// safe for concurrent use; the navigator drives it from one goroutine.
type Manager struct {
	engine  Engine
	logger  *slog.Logger
	now     func() time.Time
	session *Session
}

// NewManager returns a manager in the unmounted state.
func NewManager(engine Engine, logger *slog.Logger) *Manager {
	return &Manager{engine: engine, logger: logging.NewComponentLogger(logger, "mount"), now: time.Now}
}

// Active returns the current session, if any.
func (m *Manager) Active() (Session, bool) {
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Supported reports whether the engine offers FUSE mounts for rc. Probe
// failures count as unsupported.
func (m *Manager) Supported(ctx context.Context, rc repo.Context) bool {
	ok, err := m.engine.MountSupported(ctx, rc)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "mount support probe failed", "mount_probe_failed",
			"check borg_bin", logging.Error(err))
		return false
	}
	return ok
}

// Mount prepares mountpoint and mounts archive there. It fails with a
// mount-state error while another archive is mounted.
func (m *Manager) Mount(ctx context.Context, rc repo.Context, archive, mountpoint string, pass credentials.Passphrase) (Session, error) {
	if m.session != nil {
		return Session{}, services.Wrap(services.ErrMountState, "mount", "mount",
			fmt.Sprintf("%s is still mounted; unmount it first", m.session), nil)
	}
	if mountpoint == "" {
		mountpoint = rc.DefaultMountpoint(archive)
	}
	if err := PrepareMountpoint(mountpoint); err != nil {
		return Session{}, err
	}
	if err := m.engine.Mount(ctx, rc, archive, mountpoint, pass); err != nil {
		return Session{}, err
	}
	m.session = &Session{Archive: archive, Mountpoint: mountpoint, Repository: rc, MountedAt: m.now()}
	logging.WithContext(ctx, m.logger).Info("archive mounted",
		logging.String(logging.FieldArchive, archive),
		logging.String("mountpoint", mountpoint),
	)
	return *m.session, nil
}

// Unmount releases the active session. The mountpoint directory is kept.
func (m *Manager) Unmount(ctx context.Context, pass credentials.Passphrase) error {
	if m.session == nil {
		return services.Wrap(services.ErrMountState, "mount", "umount", "no archive is mounted", nil)
	}
	current := *m.session
	if err := m.engine.Umount(ctx, current.Repository, current.Mountpoint, pass); err != nil {
		return err
	}
	m.session = nil
	logging.WithContext(ctx, m.logger).Info("archive unmounted",
		logging.String(logging.FieldArchive, current.Archive),
		logging.String("mountpoint", current.Mountpoint),
	)
	return nil
}

// UnmountPath unmounts an arbitrary mountpoint, as the single-shot umount
// command does. A matching active session is released.
func (m *Manager) UnmountPath(ctx context.Context, rc repo.Context, mountpoint string, pass credentials.Passphrase) error {
	if err := m.engine.Umount(ctx, rc, mountpoint, pass); err != nil {
		return err
	}
	if m.session != nil && m.session.Mountpoint == mountpoint {
		m.session = nil
	}
	return nil
}
