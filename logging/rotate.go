package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/public-forge/go-tower-api/metrics"
	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
)

const (
	// rotatedStampLayout prefixes rotated files, e.g. 20240716_103000-application.log.
	rotatedStampLayout = "20060102_150405"

	dirPermissions  = 0o755
	filePermissions = 0o644
)

// RotatingFile is a zapcore.WriteSyncer appending each write to a file which
// is rotated once it grows beyond a size threshold. The file is opened and
// closed around every write; concurrent writers are serialized so that the
// rotate-then-append sequence is atomic with respect to other writes.
type RotatingFile struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	maxSize int64
	now     func() time.Time
}

// NewRotatingFile returns a RotatingFile at path on fs, rotated when larger than maxSize bytes.
func NewRotatingFile(fs afero.Fs, path string, maxSize int64) *RotatingFile {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &RotatingFile{
		fs:      fs,
		path:    path,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Path returns the path of the active log file.
func (f *RotatingFile) Path() string { return f.path }

// Write rotates the file if required, then appends p to it.
func (f *RotatingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.rotateIfNeeded(); err != nil {
		return 0, err
	}
	if err := f.ensureExists(); err != nil {
		return 0, err
	}

	file, err := f.fs.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, filePermissions)
	if err != nil {
		return 0, fmt.Errorf("opening log file %s: %w", f.path, err)
	}
	n, err := file.Write(p)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing log file %s: %w", f.path, closeErr)
	}
	return n, err
}

// Sync is a no-op: the file is closed after every write.
func (f *RotatingFile) Sync() error { return nil }

// rotateIfNeeded moves the active file aside once it exceeds maxSize and
// leaves a fresh empty file in its place. Must be called with mu held.
func (f *RotatingFile) rotateIfNeeded() error {
	info, err := f.fs.Stat(f.path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("checking log file %s: %w", f.path, err)
	}
	if info.Size() <= f.maxSize {
		return nil
	}

	target, err := f.rotatedName()
	if err != nil {
		return err
	}
	if err := f.fs.Rename(f.path, target); err != nil {
		if os.IsNotExist(err) {
			return nil // Already moved aside; the append will recreate it.
		}
		return fmt.Errorf("rotating log file %s (%s): %w", f.path, humanize.IBytes(uint64(info.Size())), err)
	}
	metrics.LogRotationsTotal.Inc()
	metrics.LogRotatedBytesTotal.Add(float64(info.Size()))

	return f.create()
}

// rotatedName returns <dir>/<YYYYMMDD_HHMMSS>-<name>, with a numeric suffix
// when a file of that name was already rotated within the same second.
func (f *RotatingFile) rotatedName() (string, error) {
	var dir, base = filepath.Split(f.path)
	var stamped = filepath.Join(dir, f.now().Format(rotatedStampLayout)+"-"+base)

	var candidate = stamped
	for i := 1; ; i++ {
		exists, err := afero.Exists(f.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("checking rotated log file %s: %w", candidate, err)
		} else if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.%d", stamped, i)
	}
}

func (f *RotatingFile) ensureExists() error {
	exists, err := afero.Exists(f.fs, f.path)
	if err != nil {
		return fmt.Errorf("checking log file %s: %w", f.path, err)
	} else if exists {
		return nil
	}
	return f.create()
}

// create makes the parent directory and an empty file at the active path.
func (f *RotatingFile) create() error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := f.fs.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}
	file, err := f.fs.OpenFile(f.path, os.O_WRONLY|os.O_CREATE, filePermissions)
	if err != nil {
		return fmt.Errorf("creating log file %s: %w", f.path, err)
	}
	return file.Close()
}

var _ zapcore.WriteSyncer = (*RotatingFile)(nil)
