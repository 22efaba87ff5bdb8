package app

import "errors"

var (
	ErrBlankName         = errors.New("player name must not be blank")
	ErrUnknownPlayer     = errors.New("no such player")
	ErrAmbiguousPlayer   = errors.New("player reference matches more than one player")
	ErrNotReapable       = errors.New("storage backend does not expire sessions")
	ErrReaperNeedsDB     = errors.New("the session reaper needs the postgres storage backend")
	ErrArchiverNeedsNATS = errors.New("the archiver needs the nats events backend")
)
