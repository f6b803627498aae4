package room

import "errors"

var (
	ErrSongNotFound       = errors.New("song not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrInvalidFormat      = errors.New("invalid collection format")
	ErrLastCollection     = errors.New("cannot delete the last collection")
)
