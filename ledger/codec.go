package ledger

import (
	"encoding/binary"
	"fmt"

	"decred.org/dcrwallet/v2/errors"
	"github.com/asdine/storm/codec/msgpack"
)

// MaxProposalSize is the largest encoded proposal the ledger will persist.
const MaxProposalSize = 5000

// codec is the record serialization used for every stored proposal.
var codec = msgpack.Codec

// encodeProposal serializes p, failing if the result would exceed
// MaxProposalSize.
func encodeProposal(p *Proposal) ([]byte, error) {
	const op errors.Op = "ledger.encodeProposal"

	b, err := codec.Marshal(p)
	if err != nil {
		return nil, errors.E(op, errors.Encoding, err)
	}
	if len(b) > MaxProposalSize {
		return nil, errors.E(op, errors.Invalid,
			fmt.Errorf("%w: encoded proposal is %d bytes, limit is %d", ErrRecordTooLarge, len(b), MaxProposalSize))
	}
	return b, nil
}

// decodeProposal restores the proposal stored at key from b.
func decodeProposal(key uint64, b []byte) (*Proposal, error) {
	const op errors.Op = "ledger.decodeProposal"

	if len(b) > MaxProposalSize {
		return nil, errors.E(op, errors.Encoding, &DecodeError{Key: key,
			Err: errors.Errorf("stored record is %d bytes, limit is %d", len(b), MaxProposalSize)})
	}

	var p Proposal
	if err := codec.Unmarshal(b, &p); err != nil {
		return nil, errors.E(op, errors.Encoding, &DecodeError{Key: key, Err: err})
	}
	if len(p.Voted) == 0 {
		p.Voted = nil
	}
	return &p, nil
}

// proposalKey encodes key big-endian so the page store's byte order matches
// numeric order.
func proposalKey(key uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, key)
	return k
}
