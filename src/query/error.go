package query

import "errors"

var (
	ErrBadLimit = errors.New("limit is out of range")
)
