package fs

import (
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate       float64 // Fail ReadFile
	PartialReadRate    float64 // Return truncated data from ReadFile
	WriteFailRate      float64 // Fail WriteFileAtomic
	ReadDirFailRate    float64 // Fail ReadDir entirely
	ReadDirPartialRate float64 // Return a prefix of the directory listing
	StatFailRate       float64 // Fail Stat/Exists
	MkdirFailRate      float64 // Fail MkdirAll
	RemoveFailRate     float64 // Fail Remove
}

// DefaultChaosConfig returns a config with reasonable fault rates for testing.
func DefaultChaosConfig() ChaosConfig {
	return ChaosConfig{
		ReadFailRate:       0.02,
		PartialReadRate:    0.02,
		WriteFailRate:      0.02,
		ReadDirFailRate:    0.02,
		ReadDirPartialRate: 0.02,
		StatFailRate:       0.01,
		MkdirFailRate:      0.01,
		RemoveFailRate:     0.02,
	}
}

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection.
	ChaosModeInject
)

// Chaos wraps an [FS] and injects failures for testing.
//
// Errors are reality-aware: ENOENT is only returned if the file really
// doesn't exist on the underlying filesystem. All injected errors are
// *fs.PathError values carrying a syscall.Errno, so errors.Is and
// os.IsNotExist behave as they would for real OS errors. [IsInjected]
// tells them apart.
//
// A rate of 1.0 fails every call, which is how store tests force a write
// failure deterministically.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	mu  sync.Mutex
	rng *rand.Rand

	readFails    atomic.Int64
	partialReads atomic.Int64
	writeFails   atomic.Int64
	readDirFails atomic.Int64
	partialDirs  atomic.Int64
	statFails    atomic.Int64
	mkdirFails   atomic.Int64
	removeFails  atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
// The returned filesystem starts in [ChaosModeInject].
func NewChaos(fs FS, seed int64, config ChaosConfig) *Chaos {
	c := &Chaos{
		fs:     fs,
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
	c.mode.Store(uint32(ChaosModeInject))

	return c
}

// SetMode updates Chaos behavior. Safe to call concurrently with
// filesystem operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails    int64
	PartialReads int64
	WriteFails   int64
	ReadDirFails int64
	PartialDirs  int64
	StatFails    int64
	MkdirFails   int64
	RemoveFails  int64
}

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:    c.readFails.Load(),
		PartialReads: c.partialReads.Load(),
		WriteFails:   c.writeFails.Load(),
		ReadDirFails: c.readDirFails.Load(),
		PartialDirs:  c.partialDirs.Load(),
		StatFails:    c.statFails.Load(),
		MkdirFails:   c.mkdirFails.Load(),
		RemoveFails:  c.removeFails.Load(),
	}
}

// TotalFaults returns the total number of injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.ReadFails + s.PartialReads + s.WriteFails + s.ReadDirFails +
		s.PartialDirs + s.StatFails + s.MkdirFails + s.RemoveFails
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(rate float64) bool {
	if ChaosMode(c.mode.Load()) != ChaosModeInject || rate <= 0 {
		return false
	}

	if rate >= 1 {
		return true
	}

	return c.randFloat() < rate
}

func (c *Chaos) randFloat() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64()
}

func (c *Chaos) randIntn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Intn(n)
}

// pathError creates an *fs.PathError with the given operation, path, and errno.
// This matches what the real OS returns, so errors.Is() works correctly.
func pathError(op, path string, errno syscall.Errno) error {
	pe := &fs.PathError{Op: op, Path: path, Err: errno}
	markInjectedPathError(pe)

	return pe
}

// pickError selects an errno that is consistent with the real filesystem
// state for op. If the existence check itself fails, that real error is
// returned instead of a fabricated one.
func (c *Chaos) pickError(op string, path string) (syscall.Errno, error) {
	var valid []syscall.Errno

	switch op {
	case "read", "stat", "readdir", "remove":
		exists, err := c.fs.Exists(path)
		if err != nil {
			return 0, err
		}

		if exists {
			valid = []syscall.Errno{syscall.EACCES, syscall.EIO}
		} else {
			valid = []syscall.Errno{syscall.ENOENT, syscall.EACCES, syscall.EIO}
		}
	case "write", "mkdir":
		valid = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}
	default:
		valid = []syscall.Errno{syscall.EIO}
	}

	return valid[c.randIntn(len(valid))], nil
}

func (c *Chaos) inject(op, path string, counter *atomic.Int64) error {
	errno, err := c.pickError(op, path)
	if err != nil {
		return err
	}

	counter.Add(1)

	return pathError(op, path, errno)
}

// --- File Operations ---

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.should(c.config.ReadFailRate) {
		return nil, c.inject("read", path, &c.readFails)
	}

	data, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if c.should(c.config.PartialReadRate) && len(data) > 1 {
		c.partialReads.Add(1)

		return data[:c.randIntn(len(data)-1)+1], nil
	}

	return data, nil
}

func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if c.should(c.config.WriteFailRate) {
		return c.inject("write", path, &c.writeFails)
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// --- Directory Operations ---

func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	if c.should(c.config.ReadDirFailRate) {
		return nil, c.inject("readdir", path, &c.readDirFails)
	}

	entries, err := c.fs.ReadDir(path)
	if err != nil {
		return nil, err
	}

	if c.should(c.config.ReadDirPartialRate) && len(entries) > 1 {
		c.partialDirs.Add(1)

		return entries[:c.randIntn(len(entries)-1)+1], nil
	}

	return entries, nil
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if c.should(c.config.MkdirFailRate) {
		return c.inject("mkdir", path, &c.mkdirFails)
	}

	return c.fs.MkdirAll(path, perm)
}

// --- Metadata ---

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.should(c.config.StatFailRate) {
		return nil, c.inject("stat", path, &c.statFails)
	}

	return c.fs.Stat(path)
}

func (c *Chaos) Exists(path string) (bool, error) {
	if c.should(c.config.StatFailRate) {
		return false, c.inject("stat", path, &c.statFails)
	}

	return c.fs.Exists(path)
}

// --- Mutations ---

func (c *Chaos) Remove(path string) error {
	if c.should(c.config.RemoveFailRate) {
		return c.inject("remove", path, &c.removeFails)
	}

	return c.fs.Remove(path)
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
