package giveaway

import (
	"errors"
	"fmt"
)

// Code identifies why a giveaway request was rejected. Codes are stable so
// the command layer can pick user-facing wording per code.
type Code string

const (
	CodeCooldownActive       Code = "COOLDOWN_ACTIVE"
	CodeQuotaExceeded        Code = "QUOTA_EXCEEDED"
	CodeInvalidTimeFormat    Code = "INVALID_TIME_FORMAT"
	CodeTimeBelowMinimum     Code = "TIME_BELOW_MINIMUM"
	CodeTimeAboveMaximum     Code = "TIME_ABOVE_MAXIMUM"
	CodeInvalidWinnersFormat Code = "INVALID_WINNERS_FORMAT"
	CodeWinnersOutOfRange    Code = "WINNERS_OUT_OF_RANGE"
	CodePrizeTooLong         Code = "PRIZE_TOO_LONG"
	CodeDescriptionTooLong   Code = "DESCRIPTION_TOO_LONG"
	CodeBotLacksPermissions  Code = "BOT_LACKS_PERMISSIONS"
	CodeCreationFailed       Code = "CREATION_FAILED"
)

// Error is a typed rejection carrying the offending value and the limit it
// violated, so the command layer can render both without re-parsing input.
type Error struct {
	Code  Code
	Value any
	Limit any
}

func (e *Error) Error() string {
	switch {
	case e.Value != nil && e.Limit != nil:
		return fmt.Sprintf("%s: got %v, limit %v", e.Code, e.Value, e.Limit)
	case e.Value != nil:
		return fmt.Sprintf("%s: got %v", e.Code, e.Value)
	default:
		return string(e.Code)
	}
}

func newError(code Code, value any, limit any) *Error {
	return &Error{Code: code, Value: value, Limit: limit}
}

// AsError unwraps err into a giveaway Error if it is one.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// ErrMissingPermissions marks a transport failure caused by the bot lacking
// send or embed permissions in the target channel. The rest adapter wraps
// the raw Discord error with this sentinel.
var ErrMissingPermissions = errors.New("bot lacks permissions")
