package game

import "errors"

// User-facing, locally recoverable rejection conditions. The orchestrator
// catches these at the command boundary and turns them into rejection
// notifications; none of them should ever crash the process.
var (
	ErrAlreadyQueued        = errors.New("already in this queue")
	ErrNotQueued            = errors.New("not in this queue")
	ErrAlreadyInMatch       = errors.New("already in an active match")
	ErrInvalidSelectionMode = errors.New("invalid team selection mode")
	ErrAlreadyReported      = errors.New("match result has already been reported")
	ErrVoteTimedOut         = errors.New("vote timed out before reaching a decision")
	ErrNotEligible          = errors.New("not an eligible party for this action")
	ErrTeamFull             = errors.New("team already has the maximum number of players")
	ErrOutOfTurn            = errors.New("not your turn to pick")
	ErrQueueNotFull         = errors.New("queue is not full")
	ErrInvalidCapacity      = errors.New("queue capacity must be an even integer >= 2")
	ErrBalancedTooLarge     = errors.New("capacity exceeds what balanced selection supports")
	ErrMatchNotFound        = errors.New("match not found")
	ErrQueueNotFound        = errors.New("queue not found")
	ErrQueuesDisabled       = errors.New("queueing is currently disabled")
	ErrWrongState           = errors.New("match is not in a state that allows this action")
)
