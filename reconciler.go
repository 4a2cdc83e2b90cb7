package walletauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reconciler decides whether a requested delegation scope is already
// satisfied by a delegation active on the account, and submits a new grant
// when it is not.
//
// Concurrent callers may race EnsureDelegation for the same account. That
// is accepted rather than locked out: the satisfaction scan is idempotent
// and a duplicate grant costs execution fees, nothing more.
type Reconciler struct {
	cfg       ReconcilerConfig
	chain     ChainReader
	submitter TransactionSubmitter
	logger    *zap.Logger
	now       func() time.Time
}

// NewReconciler builds a reconciler over the given chain capabilities.
func NewReconciler(cfg ReconcilerConfig, chain ChainReader, submitter TransactionSubmitter, opts ...Option) (*Reconciler, error) {
	if chain == nil {
		return nil, errors.New("chain reader is required")
	}
	if submitter == nil {
		return nil, errors.New("transaction submitter is required")
	}
	cfg.normalize()
	s := applyOptions(opts)
	return &Reconciler{cfg: cfg, chain: chain, submitter: submitter, logger: s.logger, now: s.now}, nil
}

// ReconcileResult reports how a delegation request was resolved.
type ReconcileResult struct {
	// AlreadySatisfied is true when an active delegation covered the
	// request and no transaction was submitted.
	AlreadySatisfied bool

	// Satisfier is the delegation that covered the request.
	Satisfier *Delegation

	// Receipt acknowledges the submitted grant when one was needed.
	Receipt *Receipt

	// DeployedAccount is true when the grant doubled as the account's
	// deployment transaction.
	DeployedAccount bool
}

// EnsureDelegation reconciles the requested scope against the account's
// active delegations, submitting a new grant when none satisfies it. A
// failed submission leaves no partial state to clean up: re-invoking
// re-reads chain state and correctly observes "not yet granted".
func (r *Reconciler) EnsureDelegation(ctx context.Context, account Address, req DelegationRequest) (*ReconcileResult, error) {
	if account == "" {
		return nil, errors.New("account is required")
	}
	if req.Signer == "" {
		return nil, errors.New("request signer is required")
	}
	if req.Duration <= 0 {
		return nil, errors.New("request duration must be positive")
	}

	account = account.Normalize()
	deployed, err := r.chain.IsDeployed(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("check account deployment: %w", err)
	}

	now := r.now().UTC()
	if deployed {
		// An undeployed account has nothing to query; the first
		// transaction deploys it, so the scan only runs here.
		active, err := r.chain.ActiveDelegations(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("read active delegations: %w", err)
		}
		for _, d := range active {
			if err := d.Validate(); err != nil {
				r.logger.Warn("skipping invalid delegation",
					zap.String("account", string(account)),
					zap.String("signer", string(d.Signer)),
					zap.Error(err),
				)
				continue
			}
			if r.satisfies(d, req, now) {
				r.logger.Debug("delegation request already satisfied",
					zap.String("account", string(account)),
					zap.String("signer", string(req.Signer.Normalize())),
				)
				satisfier := d
				return &ReconcileResult{AlreadySatisfied: true, Satisfier: &satisfier}, nil
			}
		}
	}

	tx := Transaction{
		ID:                      uuid.NewString(),
		Account:                 account,
		Signer:                  req.Signer.Normalize(),
		ApprovedTargets:         normalizeAddresses(req.ApprovedTargets),
		NativeValueLimitPerCall: req.NativeValueLimitPerCall,
		StartTimestamp:          now.Add(-r.cfg.BackdateMargin),
		EndTimestamp:            now.Add(req.Duration),
		DeploysAccount:          !deployed,
	}
	receipt, err := r.submitter.Submit(ctx, tx)
	if err != nil {
		return nil, newError(ErrCodeDelegationGrantFailed, err)
	}

	r.logger.Info("delegation granted",
		zap.String("account", string(account)),
		zap.String("signer", string(tx.Signer)),
		zap.String("transaction_id", tx.ID),
		zap.Time("end_timestamp", tx.EndTimestamp),
		zap.Bool("deployed_account", tx.DeploysAccount),
	)
	return &ReconcileResult{Receipt: receipt, DeployedAccount: tx.DeploysAccount}, nil
}

// satisfies reports whether an active delegation covers the request at
// time now.
func (r *Reconciler) satisfies(d Delegation, req DelegationRequest, now time.Time) bool {
	if !d.Signer.Equal(req.Signer) {
		return false
	}
	switch scope := d.Scope.(type) {
	case AdminScope:
		return true
	case TargetScope:
		remaining := scope.EndTimestamp.Sub(now)
		minRemaining := req.MinRemaining
		if minRemaining <= 0 {
			minRemaining = r.cfg.DefaultMinRemaining
		}
		// Strict floor: a delegation with exactly minRemaining left is
		// already spent for our purposes.
		if remaining <= minRemaining {
			return false
		}
		// A grant outliving the sane maximum is not trusted; it gets
		// re-created instead.
		if remaining > r.cfg.MaxDelegationLifetime {
			return false
		}
		if !targetsCovered(req.ApprovedTargets, scope.ApprovedTargets) {
			return false
		}
		if req.NativeValueLimitPerCall != nil && scope.NativeValueLimitPerCall != nil &&
			scope.NativeValueLimitPerCall.Cmp(req.NativeValueLimitPerCall) < 0 {
			return false
		}
		return true
	default:
		return false
	}
}

// targetsCovered reports whether every requested target appears in the
// approved set, comparing canonical forms.
func targetsCovered(requested, approved []Address) bool {
	if len(requested) == 0 {
		return true
	}
	approvedSet := make(map[Address]struct{}, len(approved))
	for _, target := range approved {
		approvedSet[target.Normalize()] = struct{}{}
	}
	for _, target := range requested {
		if _, ok := approvedSet[target.Normalize()]; !ok {
			return false
		}
	}
	return true
}

func normalizeAddresses(addresses []Address) []Address {
	if len(addresses) == 0 {
		return nil
	}
	out := make([]Address, len(addresses))
	for i, addr := range addresses {
		out[i] = addr.Normalize()
	}
	return out
}
