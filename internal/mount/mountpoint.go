package mount

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"borgtool/internal/services"
)

// PrepareMountpoint makes path ready to receive a FUSE mount. An existing
// path must be an empty, writable directory that is not already a mount
// point. A missing path is created with its parents.
func PrepareMountpoint(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return services.Wrap(services.ErrMountState, "mount", "prepare", fmt.Sprintf("Create mountpoint %s", path), err)
		}
		return nil
	case err != nil:
		return services.Wrap(services.ErrMountState, "mount", "prepare", fmt.Sprintf("Stat mountpoint %s", path), err)
	}

	if !info.IsDir() {
		return services.Wrap(services.ErrMountState, "mount", "prepare",
			fmt.Sprintf("Mountpoint %s exists and is not a directory", path), nil)
	}
	empty, err := isEmptyDir(path)
	if err != nil {
		return services.Wrap(services.ErrMountState, "mount", "prepare", fmt.Sprintf("Reading mountpoint %s", path), err)
	}
	if !empty {
		return services.Wrap(services.ErrMountState, "mount", "prepare",
			fmt.Sprintf("Mountpoint %s is not empty; choose an empty directory", path), nil)
	}
	if mounted, err := IsMountPoint(path); err == nil && mounted {
		return services.Wrap(services.ErrMountState, "mount", "prepare",
			fmt.Sprintf("Mountpoint %s is already in use by another mount", path), nil)
	}
	if err := unix.Access(path, unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrMountState, "mount", "prepare",
			fmt.Sprintf("Mountpoint %s is not writable", path), err)
	}
	return nil
}

// IsMountPoint reports whether path sits on a different device than its
// parent directory.
func IsMountPoint(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return true, nil
	}
	var self, up unix.Stat_t
	if err := unix.Stat(abs, &self); err != nil {
		return false, err
	}
	if err := unix.Stat(parent, &up); err != nil {
		return false, err
	}
	return self.Dev != up.Dev, nil
}

func isEmptyDir(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer dir.Close()
	_, err = dir.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
