package transfer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"filetamer/pkg/errors"

	"go.uber.org/zap"
)

// MaxConflictAttempts bounds the counter loop of Resolver.Resolve.
const MaxConflictAttempts = 1000

// Resolver picks collision-free destination paths. Besides the filesystem
// it consults the destinations claimed earlier in the same invocation, so a
// simulated run reports the names a real run would use.
type Resolver struct {
	suffix  string
	claimed map[string]struct{}
	logger  *zap.Logger
}

// NewResolver returns a Resolver inserting suffix before the extension.
func NewResolver(suffix string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{suffix: suffix, claimed: map[string]struct{}{}, logger: logger}
}

// Resolve returns candidate when it is free. Otherwise it tries
// {stem}{suffix}{ext}, then {stem}{suffix}2{ext}, {stem}{suffix}3{ext} and
// so on, and fails with DESTINATION_OCCUPIED when every attempt is taken.
// Resolve does not claim the path it returns; see Claim.
func (r *Resolver) Resolve(candidate string) (string, error) {
	if !r.occupied(candidate) {
		return candidate, nil
	}

	dir, stem, ext := splitName(candidate)
	for attempt := 1; attempt <= MaxConflictAttempts; attempt++ {
		name := stem + r.suffix
		if attempt > 1 {
			name += strconv.Itoa(attempt)
		}
		next := filepath.Join(dir, name+ext)
		if !r.occupied(next) {
			r.logger.Debug("Resolved destination conflict",
				zap.String("candidate", candidate),
				zap.String("destination", next),
				zap.Int("attempt", attempt))
			return next, nil
		}
	}
	return "", errors.Newf(errors.ErrDestinationOccupied,
		"no free destination for %s after %d attempts", candidate, MaxConflictAttempts).
		WithDetail("candidate", candidate)
}

// Claim marks path as taken for the rest of the invocation.
func (r *Resolver) Claim(path string) {
	r.claimed[path] = struct{}{}
}

func (r *Resolver) occupied(path string) bool {
	if _, ok := r.claimed[path]; ok {
		return true
	}
	_, err := os.Lstat(path)
	return err == nil
}

// splitName splits path into directory, stem and extension. A dotfile
// without a further extension keeps its whole name as the stem.
func splitName(path string) (dir, stem, ext string) {
	dir, base := filepath.Split(path)
	ext = filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	return dir, strings.TrimSuffix(base, ext), ext
}
