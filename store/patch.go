package store

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errInvalidPatch = errors.New("invalid patch")

// IsInvalidPatch reports whether err was caused by a malformed patch document.
func IsInvalidPatch(err error) bool {
	return errors.Is(err, errInvalidPatch)
}

// mergePatch decodes the top-level members of patch over current. The
// primary key cannot change; a version in the patch becomes the expected
// version of the following write.
func (m *entityMeta) mergePatch(current any, patch []byte) error {
	patch = bytes.TrimSpace(patch)
	if len(patch) == 0 || patch[0] != '{' {
		return errors.Wrap(errInvalidPatch, "patch must be a JSON object")
	}
	id := m.id(current)
	if err := json.Unmarshal(patch, current); err != nil {
		return errors.Wrapf(errInvalidPatch, "decode patch: %v", err)
	}
	if got := m.id(current); got != id {
		m.setID(current, id)
		return errors.Wrapf(ErrIDMismatch, "patch changes id %s to %s", id, got)
	}
	return nil
}
