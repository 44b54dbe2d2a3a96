package control

import "errors"

var (
	errNotIBT         = errors.New("uploaded file must have a .ibt extension")
	errAlreadyActive  = errors.New("a replay is already active; delete it before uploading another")
	errNoActiveReplay = errors.New("no active replay")
	errTooLarge       = errors.New("uploaded file exceeds the configured maximum size")
	errUnknownSink    = errors.New("unknown sink id")
)
