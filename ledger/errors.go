package ledger

import (
	"fmt"

	"decred.org/dcrwallet/v2/errors"
)

// ErrorCode identifies a ledger failure. Codes are wrapped in *errors.Error
// values carrying the operation and an error kind, and can be matched with
// errors.Is.
type ErrorCode string

func (e ErrorCode) Error() string {
	return string(e)
}

const (
	ErrNoSuchProposal      ErrorCode = "no_such_proposal"
	ErrAccessRejected      ErrorCode = "access_rejected"
	ErrAlreadyVoted        ErrorCode = "already_voted"
	ErrProposalIsNotActive ErrorCode = "proposal_is_not_active"
	ErrUpdateFailed        ErrorCode = "update_failed"
	ErrInvalidChoice       ErrorCode = "invalid_choice"
	ErrRecordTooLarge      ErrorCode = "record_too_large"
	ErrDecodeFailed        ErrorCode = "decode_failed"
)

// UpdateError reports a proposal write that did not apply.
type UpdateError struct {
	Detail string
	Err    error
}

func (e *UpdateError) Error() string {
	return string(ErrUpdateFailed) + ": " + e.Detail
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// Is matches ErrUpdateFailed.
func (e *UpdateError) Is(target error) bool {
	return target == ErrUpdateFailed
}

// DecodeError reports a stored record that could not be decoded. It is not
// recoverable for the operation that hit it.
type DecodeError struct {
	Key uint64
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: proposal %d: %v", ErrDecodeFailed, e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches ErrDecodeFailed.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailed
}

// Code returns the ErrorCode carried by err, or an empty code if err did not
// originate from the ledger.
func Code(err error) ErrorCode {
	for _, code := range []ErrorCode{
		ErrNoSuchProposal,
		ErrAccessRejected,
		ErrAlreadyVoted,
		ErrProposalIsNotActive,
		ErrUpdateFailed,
		ErrInvalidChoice,
		ErrRecordTooLarge,
		ErrDecodeFailed,
	} {
		if errors.Is(err, code) {
			return code
		}
	}
	return ""
}
