// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpenAccess is returned for a record the legality policy rejects.
	ErrNotOpenAccess = errors.New("paper is not open access")

	// ErrMissingPDFURL is returned for an open-access record with no PDF location.
	ErrMissingPDFURL = errors.New("no PDF URL for open-access paper")
)

// StorageError reports a filesystem failure under the storage root.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
