package ledger

import (
	"context"
	"sync"

	"code.cryptopower.dev/group/govledger/pagestore"
	"decred.org/dcrwallet/v2/errors"
)

// ProposalsMemoryID is the page store region holding the proposal map.
const ProposalsMemoryID pagestore.MemoryID = 0

// Ledger is the proposal map and the governance operations built on it. A
// single Ledger should exist per page store; it is safe for concurrent use.
type Ledger struct {
	mu        *sync.RWMutex // Pointer required to avoid copying literal values.
	proposals *pagestore.Memory
}

// New binds a Ledger to the proposal region of the page store.
func New(store *pagestore.Manager) (*Ledger, error) {
	mem, err := store.Memory(ProposalsMemoryID)
	if err != nil {
		log.Errorf("Error initializing proposal map: %v", err)
		return nil, err
	}

	return &Ledger{
		mu:        &sync.RWMutex{},
		proposals: mem,
	}, nil
}

// get loads the proposal at key. A missing key yields a nil proposal and no
// error. The caller must hold l.mu.
func (l *Ledger) get(key uint64) (*Proposal, error) {
	b, err := l.proposals.Get(proposalKey(key))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return decodeProposal(key, b)
}

// put writes p at key. Any failure, including the size bound, is reported as
// an *UpdateError. The caller must hold l.mu for writing.
func (l *Ledger) put(op errors.Op, key uint64, p *Proposal) error {
	b, err := encodeProposal(p)
	if err == nil {
		err = l.proposals.Put(proposalKey(key), b)
	}
	if err != nil {
		log.Errorf("Error writing proposal %d: %v", key, err)
		return errors.E(op, errors.IO, &UpdateError{Detail: err.Error(), Err: err})
	}
	return nil
}

// GetProposal returns the proposal stored at key, or nil if there is none.
func (l *Ledger) GetProposal(key uint64) (*Proposal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.get(key)
	if err != nil {
		return nil, errors.E(errors.Op("ledger.GetProposal"), err)
	}
	return p, nil
}

// ProposalCount returns the number of keys in the proposal map.
func (l *Ledger) ProposalCount() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, err := l.proposals.Len()
	if err != nil {
		return 0, errors.E(errors.Op("ledger.ProposalCount"), err)
	}
	return n, nil
}

// CreateProposal stores a new proposal owned by the caller at key. An
// existing proposal at key is overwritten and returned; nil is returned when
// the key was unused.
func (l *Ledger) CreateProposal(ctx context.Context, key uint64, args CreateProposal) (*Proposal, error) {
	const op errors.Op = "ledger.CreateProposal"

	p := &Proposal{
		Description: args.Description,
		IsActive:    args.IsActive,
		Owner:       Caller(ctx),
	}
	b, err := encodeProposal(p)
	if err != nil {
		return nil, errors.E(op, errors.IO, &UpdateError{Detail: err.Error(), Err: err})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The replaced record must decode before anything is written.
	prev, err := l.get(key)
	if err != nil {
		return nil, errors.E(op, err)
	}

	if err := l.proposals.Put(proposalKey(key), b); err != nil {
		log.Errorf("Error writing proposal %d: %v", key, err)
		return nil, errors.E(op, errors.IO, &UpdateError{Detail: err.Error(), Err: err})
	}

	log.Debugf("Proposal %d created by %s", key, p.Owner)
	return prev, nil
}

// loadOwned loads the proposal at key and checks that the caller owns it.
// The caller must hold l.mu for writing.
func (l *Ledger) loadOwned(ctx context.Context, op errors.Op, key uint64) (*Proposal, error) {
	p, err := l.get(key)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if p == nil {
		return nil, errors.E(op, errors.NotExist, ErrNoSuchProposal)
	}
	if Caller(ctx) != p.Owner {
		return nil, errors.E(op, errors.Permission, ErrAccessRejected)
	}
	return p, nil
}

// EditProposal replaces the description and activity flag of the proposal
// at key. Only the owner may edit; tallies, voters and owner are preserved.
// Editing may set an ended proposal active again.
func (l *Ledger) EditProposal(ctx context.Context, key uint64, args CreateProposal) error {
	const op errors.Op = "ledger.EditProposal"

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.loadOwned(ctx, op, key)
	if err != nil {
		return err
	}

	p.Description = args.Description
	p.IsActive = args.IsActive

	if err := l.put(op, key, p); err != nil {
		return err
	}
	log.Debugf("Proposal %d edited (active=%v)", key, p.IsActive)
	return nil
}

// EndProposal deactivates the proposal at key. Only the owner may end it.
func (l *Ledger) EndProposal(ctx context.Context, key uint64) error {
	const op errors.Op = "ledger.EndProposal"

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.loadOwned(ctx, op, key)
	if err != nil {
		return err
	}

	p.IsActive = false

	if err := l.put(op, key, p); err != nil {
		return err
	}
	log.Debugf("Proposal %d ended", key)
	return nil
}

// Vote records the caller's choice on the proposal at key. Any caller,
// including the owner, may vote once per proposal. A repeated vote fails with
// ErrAlreadyVoted even when the proposal is no longer active.
func (l *Ledger) Vote(ctx context.Context, key uint64, choice Choice) error {
	const op errors.Op = "ledger.Vote"

	if _, ok := choiceNames[choice]; !ok {
		return errors.E(op, errors.Invalid, ErrInvalidChoice)
	}

	caller := Caller(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.get(key)
	if err != nil {
		return errors.E(op, err)
	}
	if p == nil {
		return errors.E(op, errors.NotExist, ErrNoSuchProposal)
	}

	if p.HasVoted(caller) {
		return errors.E(op, errors.Exist, ErrAlreadyVoted)
	} else if !p.IsActive {
		return errors.E(op, errors.Policy, ErrProposalIsNotActive)
	}

	switch choice {
	case Approve:
		p.Approve++
	case Reject:
		p.Reject++
	case Pass:
		p.Pass++
	}
	p.Voted = append(p.Voted, caller)

	if err := l.put(op, key, p); err != nil {
		return err
	}
	log.Debugf("Proposal %d: %s voted %s", key, caller, choice)
	return nil
}
