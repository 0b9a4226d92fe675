// Package fsops is the single place where the pipeline mutates the
// filesystem. Stages receive an Operator bound to an execution Mode; in
// Simulated mode every mutating call only logs what it would do.
package fsops

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// Mode selects between performing and simulating filesystem changes.
type Mode int

const (
	Real Mode = iota
	Simulated
)

// ModeFor maps a dry-run flag to a Mode.
func ModeFor(dryRun bool) Mode {
	if dryRun {
		return Simulated
	}
	return Real
}

func (m Mode) String() string {
	if m == Simulated {
		return "simulated"
	}
	return "real"
}

// Operator performs, or in Simulated mode describes, filesystem changes.
type Operator interface {
	Mode() Mode
	Remove(path string) error
	MkdirAll(dir string) error
	Rename(src, dst string) error
	Copy(src, dst string) error
}

// New returns the Operator for mode.
func New(mode Mode, logger *zap.Logger) Operator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == Simulated {
		return &dryRunOperator{logger: logger.With(zap.Bool("dryRun", true))}
	}
	return &osOperator{logger: logger}
}

type osOperator struct {
	logger *zap.Logger
}

func (o *osOperator) Mode() Mode { return Real }

func (o *osOperator) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return err
	}
	o.logger.Debug("Removed file", zap.String("path", path))
	return nil
}

func (o *osOperator) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// Rename refuses to replace an existing destination.
func (o *osOperator) Rename(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}

// Copy copies content and permission bits. dst must not exist.
func (o *osOperator) Copy(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}

type dryRunOperator struct {
	logger *zap.Logger
}

func (d *dryRunOperator) Mode() Mode { return Simulated }

func (d *dryRunOperator) Remove(path string) error {
	d.logger.Info("Would delete file", zap.String("path", path))
	return nil
}

func (d *dryRunOperator) MkdirAll(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	d.logger.Info("Would create directory", zap.String("path", dir))
	return nil
}

func (d *dryRunOperator) Rename(src, dst string) error {
	d.logger.Info("Would move file", zap.String("source", src), zap.String("destination", dst))
	return nil
}

func (d *dryRunOperator) Copy(src, dst string) error {
	d.logger.Info("Would copy file", zap.String("source", src), zap.String("destination", dst))
	return nil
}
