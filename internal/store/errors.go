package store

import "errors"

// ErrNoSession is returned by UpdateTokens when there is no stored session to
// rotate. Saving a partial pair without the user would break the
// all-or-nothing session invariant.
var ErrNoSession = errors.New("no stored session")

// ErrIncompleteSession is returned by Save when the session is missing one of
// the two tokens.
var ErrIncompleteSession = errors.New("session must carry both tokens")
