package draft

import "errors"

var (
	ErrMalformedLeague       = errors.New("malformed league configuration")
	ErrDraftNotOpen          = errors.New("draft is not open")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrNotMember             = errors.New("not a league member")
	ErrEmptySelection        = errors.New("no contestant selected")
	ErrTooManySelections     = errors.New("selection exceeds remaining roster slots")
	ErrDuplicateSelection    = errors.New("contestant selected more than once")
	ErrRosterFull            = errors.New("roster is full")
	ErrContestantFull        = errors.New("contestant reached max owners")
	ErrContestantUnavailable = errors.New("contestant is not available")
	ErrAlreadyOwned          = errors.New("contestant already on roster")
)
