package shuffle

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	errMissingSource    = errors.New("shuffle: query source is required")
	errMissingProjector = errors.New("shuffle: projector is required")
)

// dataAccessError tags a data source failure. The original error stays
// reachable through errors.Is and errors.As.
func dataAccessError(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message)
}
