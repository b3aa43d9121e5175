/* errors.go
 * Contains the error taxonomy surfaced to callers. Services wrap these sentinels with
 * fmt.Errorf("...: %w", err) so transports can map them with errors.Is
 * Authors: Zachary Bower
 */

package shared

import "errors"

var (
	// ErrUnauthenticated means no caller identity was supplied
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound means the requested match, result or user does not exist
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller lacks rights for the operation, e.g. a non-host cancelling
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the operation is illegal for the match's current status
	ErrInvalidState = errors.New("invalid match state")
	// ErrNotParticipant means the caller has no result row in the match
	ErrNotParticipant = errors.New("caller is not a match participant")
	// ErrAlreadySubmitted means the caller already submitted a result for the match
	ErrAlreadySubmitted = errors.New("result already submitted")
	// ErrSelfJoin means the host tried to join their own match
	ErrSelfJoin = errors.New("cannot join your own match")
	// ErrAlreadyFull means the match already has an opponent
	ErrAlreadyFull = errors.New("match already has an opponent")
	// ErrValidation means a numeric input was out of range
	ErrValidation = errors.New("validation error")
	// ErrRateLimited means the caller is creating matches faster than allowed
	ErrRateLimited = errors.New("rate limited")
)
