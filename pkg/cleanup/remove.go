package cleanup

import (
	"filetamer/pkg/errors"
	"filetamer/pkg/fsops"
)

// Remove deletes one file through op.
func Remove(path string, op fsops.Operator) error {
	if err := op.Remove(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileIO, "failed to delete %s", path)
	}
	return nil
}
