package ledger

import (
	"strings"

	"decred.org/dcrwallet/v2/errors"
)

// Proposal is the governance record persisted for every key in the ledger.
type Proposal struct {
	Description string      `json:"description" msgpack:"description"`
	Approve     uint32      `json:"approve" msgpack:"approve"`
	Reject      uint32      `json:"reject" msgpack:"reject"`
	Pass        uint32      `json:"pass" msgpack:"pass"`
	IsActive    bool        `json:"is_active" msgpack:"is_active"`
	Voted       []Principal `json:"voted" msgpack:"voted"`
	Owner       Principal   `json:"owner" msgpack:"owner"`
}

// HasVoted reports whether p already cast a vote on the proposal.
func (prop *Proposal) HasVoted(p Principal) bool {
	for _, v := range prop.Voted {
		if v == p {
			return true
		}
	}
	return false
}

// CreateProposal carries the caller-editable fields of a proposal.
type CreateProposal struct {
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Choice is a ballot option.
type Choice int32

const (
	Approve Choice = iota + 1
	Reject
	Pass
)

var choiceNames = map[Choice]string{
	Approve: "approve",
	Reject:  "reject",
	Pass:    "pass",
}

func (c Choice) String() string {
	if name, ok := choiceNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseChoice converts a case-insensitive choice name into a Choice.
func ParseChoice(s string) (Choice, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, n := range choiceNames {
		if n == name {
			return c, nil
		}
	}
	return 0, errors.E(errors.Invalid, ErrInvalidChoice)
}
