package watchlist

import "errors"

var (
	ErrInvalidGroupID = errors.New("invalid group id")

	ErrInvalidAppIdentifier = errors.New("invalid app identifier")

	// ErrStaleWatchList is a soft error: the returned list is the last one
	// known and is still usable.
	ErrStaleWatchList = errors.New("watch-list source unreachable, using last known list")
)
