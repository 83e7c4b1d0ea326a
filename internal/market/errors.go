package market

import (
	"errors"
	"fmt"
)

// DataSourceError reports that holiday data could not be loaded for the
// requested years. The calendar stays usable in weekend-only mode after it.
type DataSourceError struct {
	Years []int
	Err   error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("loading holidays for %v: %v", e.Years, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// IsDataSourceError reports whether err (or anything it wraps) is a
// DataSourceError.
func IsDataSourceError(err error) bool {
	var dsErr *DataSourceError
	return errors.As(err, &dsErr)
}
