package walletauth

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"
)

// Address identifies an on-chain account or call target. Comparisons are
// case-insensitive; Normalize produces the canonical lowercase form.
type Address string

// Normalize returns the canonical comparison form of the address.
func (a Address) Normalize() Address {
	return Address(strings.ToLower(strings.TrimSpace(string(a))))
}

// Equal reports whether two addresses refer to the same account.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), strings.TrimSpace(string(other)))
}

// DelegationScope is the authority attached to a delegation: either
// unrestricted admin standing or a target-scoped, time-bounded grant. The
// two variants are deliberately distinct types so satisfaction checks stay
// exhaustive.
type DelegationScope interface {
	isDelegationScope()
}

// AdminScope grants unrestricted standing. Admin delegations are never
// time- or target-limited.
type AdminScope struct{}

func (AdminScope) isDelegationScope() {}

// TargetScope grants time-bounded authority over an explicit set of call
// targets, optionally capped per call.
type TargetScope struct {
	ApprovedTargets         []Address
	EndTimestamp            time.Time
	NativeValueLimitPerCall *big.Int
}

func (TargetScope) isDelegationScope() {}

// Delegation is an authorization an account has granted to a backend
// signer, as read back from chain state.
type Delegation struct {
	Signer Address
	Scope  DelegationScope
}

// Validate rejects modeling errors: a non-admin delegation must carry a
// finite end timestamp and either approved targets or an explicit value
// limit. An unrestricted non-admin delegation is never legitimate.
func (d Delegation) Validate() error {
	if d.Signer == "" {
		return errors.New("delegation signer is required")
	}
	switch scope := d.Scope.(type) {
	case AdminScope:
		return nil
	case TargetScope:
		if scope.EndTimestamp.IsZero() {
			return errors.New("non-admin delegation requires an end timestamp")
		}
		if len(scope.ApprovedTargets) == 0 && scope.NativeValueLimitPerCall == nil {
			return errors.New("non-admin delegation requires approved targets or a value limit")
		}
		return nil
	case nil:
		return errors.New("delegation scope is required")
	default:
		return errors.New("unknown delegation scope")
	}
}

// DelegationRequest declares the scope a caller wants a backend signer to
// hold on an account.
type DelegationRequest struct {
	Signer                  Address
	ApprovedTargets         []Address
	NativeValueLimitPerCall *big.Int

	// Duration is the lifetime of a newly created delegation.
	Duration time.Duration

	// MinRemaining is the floor below which an existing delegation is
	// treated as not good enough. Zero falls back to the reconciler's
	// configured default.
	MinRemaining time.Duration
}

// Transaction is a new-delegation grant prepared for submission. When the
// account is not yet deployed, the grant is the account's first
// transaction and deploys it as a side effect.
type Transaction struct {
	ID                      string
	Account                 Address
	Signer                  Address
	ApprovedTargets         []Address
	NativeValueLimitPerCall *big.Int
	StartTimestamp          time.Time
	EndTimestamp            time.Time
	DeploysAccount          bool
}

// Receipt acknowledges an accepted transaction submission.
type Receipt struct {
	TransactionHash string
}

// ChainReader reads signer state for an account. Both calls are fresh
// reads; the core caches nothing across reconciliations.
type ChainReader interface {
	ActiveDelegations(ctx context.Context, account Address) ([]Delegation, error)
	IsDeployed(ctx context.Context, account Address) (bool, error)
}

// TransactionSubmitter executes a prepared grant transaction.
type TransactionSubmitter interface {
	Submit(ctx context.Context, tx Transaction) (*Receipt, error)
}
