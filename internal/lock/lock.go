package lock

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

// ErrLocked is wrapped by TryAcquire's error when another live process
// holds the bus. Check it with errors.Is.
var ErrLocked = stderrors.New("bus is held by another process")

const infoFileName = "info.json"

// Options controls where locks live and when they go stale.
type Options struct {
	// Dir holds the lock directories. Empty means os.TempDir().
	Dir string
	// Stale removes locks older than this. Zero disables the age check;
	// a lock whose holder process has exited is always stale.
	Stale time.Duration
	// Command is recorded in the lock info, e.g. "console" or "poll".
	Command string

	alive func(pid int) bool
}

// Lock is a held bus lock.
type Lock struct {
	Dir  string    // The lock directory
	Info *LockInfo // Info about the lock holder (us)
}

// PathFor returns the lock directory for a serial port, e.g.
// /dev/ttymxc2 -> <dir>/fieldmon-dev-ttymxc2.lock.
func PathFor(dir, port string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.Trim(port, "/")
	name = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-").Replace(name)
	if name == "" {
		name = "default"
	}
	return filepath.Join(dir, "fieldmon-"+name+".lock")
}

// TryAcquire takes the lock for port without waiting. A stale lock is
// cleared first; a live one fails with an error wrapping ErrLocked.
func TryAcquire(port string, opts Options) (*Lock, error) {
	if opts.alive == nil {
		opts.alive = processAlive
	}
	lockDir := PathFor(opts.Dir, port)
	if err := os.MkdirAll(filepath.Dir(lockDir), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Cannot create lock directory "+filepath.Dir(lockDir),
			"Set serial.lock_dir to a writable directory")
	}

	info := NewLockInfo(port, opts.Command)
	for attempt := 0; attempt < 2; attempt++ {
		err := os.Mkdir(lockDir, 0o755)
		if err == nil {
			return finishAcquire(lockDir, info)
		}
		if !os.IsExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				"Cannot create lock "+lockDir,
				"Check permissions on "+filepath.Dir(lockDir))
		}

		holder, herr := readInfo(lockDir)
		if herr != nil || !isStale(holder, opts) {
			break
		}
		if err := os.RemoveAll(lockDir); err != nil {
			break
		}
	}

	return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
		fmt.Sprintf("Serial port %s is in use by %s", port, Holder(lockDir)),
		"Stop the other fieldmon, or remove "+lockDir+" if it is left over")
}

func finishAcquire(lockDir string, info *LockInfo) (*Lock, error) {
	data, err := info.Marshal()
	if err == nil {
		err = os.WriteFile(filepath.Join(lockDir, infoFileName), data, 0o644)
	}
	if err != nil {
		_ = os.RemoveAll(lockDir)
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to write lock info",
			"Check disk space and permissions on "+lockDir)
	}
	return &Lock{Dir: lockDir, Info: info}, nil
}

// Release removes the lock. Releasing a nil lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			"Failed to remove lock "+l.Dir, "Remove it by hand")
	}
	return nil
}

// Holder describes who holds the lock at lockDir.
func Holder(lockDir string) string {
	info, err := readInfo(lockDir)
	if err != nil {
		return "unknown"
	}
	return info.String()
}

func readInfo(lockDir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(lockDir, infoFileName))
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// isStale reports whether the holder can be evicted. PID checks only mean
// something on the same host.
func isStale(info *LockInfo, opts Options) bool {
	if opts.Stale > 0 && info.Age() > opts.Stale {
		return true
	}
	return info.SameHost() && !opts.alive(info.PID)
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	ok, err := process.PidExists(int32(pid))
	if err != nil {
		return true
	}
	return ok
}
