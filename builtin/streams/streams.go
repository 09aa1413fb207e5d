// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/gascharger"
	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/builtin/streams/account"
	"github.com/vechain/streams/builtin/streams/distribution"
	"github.com/vechain/streams/builtin/streams/enabledset"
	"github.com/vechain/streams/builtin/streams/epoch"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var (
	logger = log.WithContext("pkg", "streams")

	slotConfig = thor.BytesToBytes32([]byte("config"))
)

// Streams implements the reward distribution ledger shared by the staking and tracking variants.
// An instance is bound to the environment of a single call.
type Streams struct {
	addr   thor.Address
	env    *xenv.Environment
	clock  epoch.Clock
	assets Assets
	auth   Authorizer

	charger  *gascharger.Charger
	dists    *distribution.Service
	accounts *account.Service
}

// Deploy writes the deployment parameters of a streams contract at addr. The origin of the
// epoch grid is the time of deployment.
func Deploy(addr thor.Address, env *xenv.Environment, epochDuration uint64) (*Config, error) {
	if epochDuration < thor.MinEpochDuration || epochDuration > thor.MaxEpochDuration {
		return nil, ErrInvalidEpochDuration
	}
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	config := solidity.NewVariable[*Config](sctx, slotConfig)

	existing, err := config.Get()
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.IsEmpty() {
		return nil, ErrAlreadyDeployed
	}

	cfg := &Config{Origin: env.BlockContext().Time, Duration: epochDuration}
	if err := config.Set(cfg, true); err != nil {
		return nil, err
	}
	logger.Info("streams deployed", "address", addr, "origin", cfg.Origin, "duration", cfg.Duration)
	return cfg, nil
}

// ReadConfig returns the deployment parameters stored at addr.
func ReadConfig(addr thor.Address, env *xenv.Environment) (*Config, error) {
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	cfg, err := solidity.NewVariable[*Config](sctx, slotConfig).Get()
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.IsEmpty() {
		return nil, ErrNotDeployed
	}
	return cfg, nil
}

// New binds the streams contract deployed at addr to env.
func New(addr thor.Address, env *xenv.Environment, assets Assets, auth Authorizer) (*Streams, error) {
	cfg, err := ReadConfig(addr, env)
	if err != nil {
		return nil, err
	}
	if auth == nil {
		auth = SenderOnly
	}
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	return &Streams{
		addr:     addr,
		env:      env,
		clock:    epoch.New(cfg.Origin, cfg.Duration),
		assets:   assets,
		auth:     auth,
		charger:  sctx.Charger(),
		dists:    distribution.New(sctx),
		accounts: account.New(sctx, thor.MaxRewardsEnabled),
	}, nil
}

func (s *Streams) Address() thor.Address { return s.addr }
func (s *Streams) Clock() epoch.Clock    { return s.clock }

func (s *Streams) now() uint64 {
	return s.env.BlockContext().Time
}

func (s *Streams) authorize(origin Origin) (thor.Address, error) {
	acct, err := s.auth.Authorize(origin)
	if err != nil {
		return thor.Address{}, err
	}
	if acct.IsZero() {
		return thor.Address{}, ErrNotAuthorized
	}
	return acct, nil
}

func (s *Streams) asset(addr thor.Address) (Asset, error) {
	a, err := s.assets.Asset(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve asset %v", addr)
	}
	return a, nil
}

// pull moves amount from owner into custody and requires custody to grow by exactly amount.
func (s *Streams) pull(asset Asset, owner thor.Address, amount *uint256.Int) error {
	before, err := asset.BalanceOf(s.addr)
	if err != nil {
		return err
	}
	if err := asset.TransferFrom(s.addr, owner, s.addr, amount); err != nil {
		return err
	}
	after, err := asset.BalanceOf(s.addr)
	if err != nil {
		return err
	}
	received, underflow := new(uint256.Int).SubOverflow(after, before)
	if underflow || !received.Eq(amount) {
		return ErrInvalidAmount
	}
	return nil
}

//
// Getters - no state change
//

// CurrentEpoch returns the epoch of the call time.
func (s *Streams) CurrentEpoch() uint64 {
	return s.clock.Current(s.now())
}

func (s *Streams) EpochOf(t uint64) uint64    { return s.clock.EpochOf(t) }
func (s *Streams) EpochStart(e uint64) uint64 { return s.clock.Start(e) }
func (s *Streams) EpochEnd(e uint64) uint64   { return s.clock.End(e) }

// RewardAmount returns the amount scheduled for the epoch.
func (s *Streams) RewardAmount(rewarded, reward thor.Address, e uint64) (*uint256.Int, error) {
	return s.dists.Amount(distribution.ID(rewarded, reward), e)
}

// CurrentRewardAmount returns the amount scheduled for the current epoch.
func (s *Streams) CurrentRewardAmount(rewarded, reward thor.Address) (*uint256.Int, error) {
	return s.RewardAmount(rewarded, reward, s.CurrentEpoch())
}

// EnabledRewards returns the rewards account has enabled for rewarded, in enabling order.
func (s *Streams) EnabledRewards(acct, rewarded thor.Address) ([]thor.Address, error) {
	return s.accounts.Enabled(acct, rewarded).Members()
}

func (s *Streams) IsRewardEnabled(acct, rewarded, reward thor.Address) (bool, error) {
	return s.accounts.Enabled(acct, rewarded).Contains(reward)
}

// BalanceOf returns the balance the ledger holds for account in rewarded.
func (s *Streams) BalanceOf(acct, rewarded thor.Address) (*uint256.Int, error) {
	return s.accounts.Balance(acct, rewarded)
}

// Rewards returns every reward token ever registered for rewarded.
func (s *Streams) Rewards(rewarded thor.Address) ([]thor.Address, error) {
	return s.dists.Rewards(rewarded).Members()
}

// weight is the balance acct earns with in the distribution: its balance when enabled, otherwise nothing.
func (s *Streams) weight(acct, rewarded, reward thor.Address) (*uint256.Int, error) {
	enabled, err := s.accounts.Enabled(acct, rewarded).Contains(reward)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return new(uint256.Int), nil
	}
	return s.accounts.Balance(acct, rewarded)
}

// EarnedReward returns what account could claim now. With forfeit it excludes the share of the
// time since the distribution was last settled.
func (s *Streams) EarnedReward(acct, rewarded, reward thor.Address, forfeit bool) (*uint256.Int, error) {
	id := distribution.ID(rewarded, reward)
	dist, err := s.dists.Get(id)
	if err != nil {
		return nil, err
	}
	accumulator := dist.Accumulator.Clone()
	if !forfeit {
		accDelta, _, err := s.accrue(id, dist, s.now())
		if err != nil {
			return nil, err
		}
		accumulator.Add(accumulator, accDelta)
	}

	rec, err := s.accounts.Reward(acct, rewarded, reward)
	if err != nil {
		return nil, err
	}
	weight, err := s.weight(acct, rewarded, reward)
	if err != nil {
		return nil, err
	}
	amount, err := earned(accumulator, rec, weight)
	if err != nil {
		return nil, err
	}
	return amount.Add(amount, rec.Claimable), nil
}

// SpilloverReward returns the spillover claimable now.
func (s *Streams) SpilloverReward(rewarded, reward thor.Address) (*uint256.Int, error) {
	id := distribution.ID(rewarded, reward)
	dist, err := s.dists.Get(id)
	if err != nil {
		return nil, err
	}
	_, spillDelta, err := s.accrue(id, dist, s.now())
	if err != nil {
		return nil, err
	}
	sp, err := s.dists.Spillover(id)
	if err != nil {
		return nil, err
	}
	return spillDelta.Add(spillDelta, sp.Claimable), nil
}

func (s *Streams) TotalRewardedEligible(rewarded, reward thor.Address) (*uint256.Int, error) {
	dist, err := s.dists.Get(distribution.ID(rewarded, reward))
	if err != nil {
		return nil, err
	}
	return dist.TotalEligible, nil
}

func (s *Streams) TotalRewardRegistered(rewarded, reward thor.Address) (*uint256.Int, error) {
	dist, err := s.dists.Get(distribution.ID(rewarded, reward))
	if err != nil {
		return nil, err
	}
	return dist.TotalRegistered, nil
}

func (s *Streams) TotalRewardClaimed(rewarded, reward thor.Address) (*uint256.Int, error) {
	dist, err := s.dists.Get(distribution.ID(rewarded, reward))
	if err != nil {
		return nil, err
	}
	return dist.TotalClaimed, nil
}

// Distribution returns the stored ledger of the distribution, as of its last settlement.
func (s *Streams) Distribution(rewarded, reward thor.Address) (*DistributionView, error) {
	id := distribution.ID(rewarded, reward)
	dist, err := s.dists.Get(id)
	if err != nil {
		return nil, err
	}
	sp, err := s.dists.Spillover(id)
	if err != nil {
		return nil, err
	}
	return &DistributionView{
		TotalEligible:      dist.TotalEligible,
		TotalRegistered:    dist.TotalRegistered,
		TotalClaimed:       dist.TotalClaimed,
		Accumulator:        dist.Accumulator,
		Spillover:          sp.Claimable,
		LastUpdated:        dist.LastUpdated,
		LastScheduledEpoch: dist.LastScheduledEpoch,
	}, nil
}

// AccountReward returns the stored standing of account in the distribution.
func (s *Streams) AccountReward(acct, rewarded, reward thor.Address) (snapshot, claimable *uint256.Int, err error) {
	rec, err := s.accounts.Reward(acct, rewarded, reward)
	if err != nil {
		return nil, nil, err
	}
	return rec.Snapshot, rec.Claimable, nil
}

//
// Setters - state change
//

// RegisterReward schedules amounts of reward for holders of rewarded, one amount per epoch from
// startEpoch on, and pulls their sum from the caller. A zero startEpoch means the current epoch.
func (s *Streams) RegisterReward(origin Origin, rewarded, reward thor.Address, startEpoch uint64, amounts []*uint256.Int) error {
	caller, err := s.authorize(origin)
	if err != nil {
		return err
	}
	if rewarded.IsZero() || reward.IsZero() || rewarded == reward {
		return ErrInvalidAddress
	}

	now := s.now()
	current := s.clock.Current(now)
	if startEpoch == 0 {
		startEpoch = current
	} else if startEpoch < current || startEpoch > current+thor.MaxEpochsAhead {
		return ErrInvalidEpoch
	}
	if len(amounts) == 0 || len(amounts) > thor.MaxDistributionLength {
		return ErrInvalidDistribution
	}

	total := new(uint256.Int)
	for _, amount := range amounts {
		if amount == nil || amount.Gt(thor.MaxAmount) {
			return ErrInvalidAmount
		}
		total.Add(total, amount)
	}
	if total.IsZero() {
		return ErrInvalidAmount
	}

	st, err := s.settle(thor.Address{}, rewarded, reward, nil, false)
	if err != nil {
		return err
	}
	dist := st.dist

	registered := new(uint256.Int).Add(dist.TotalRegistered, total)
	if registered.Gt(thor.MaxAmount) || new(uint256.Int).Mul(thor.StreamsScaler, registered).Gt(thor.MaxAccumulatorBase) {
		return ErrAccumulatorOverflow
	}
	dist.TotalRegistered = registered

	for i, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		if err := s.dists.AddAmount(st.id, startEpoch+uint64(i), amount); err != nil {
			return err
		}
	}
	if last := startEpoch + uint64(len(amounts)) - 1; last > dist.LastScheduledEpoch {
		dist.LastScheduledEpoch = last
	}

	// the elapsed part of the current epoch is behind the accumulator and can never stream.
	// It is the complement of what accrue will stream, so the two always add up to the amount.
	if startEpoch == current && !amounts[0].IsZero() {
		remaining := s.clock.Duration - s.clock.ElapsedInCurrent(now)
		streamable, _ := new(uint256.Int).MulDivOverflow(
			amounts[0],
			uint256.NewInt(remaining),
			uint256.NewInt(s.clock.Duration),
		)
		stranded := new(uint256.Int).Sub(amounts[0], streamable)
		if !stranded.IsZero() {
			if err := st.loadSpillover(s); err != nil {
				return err
			}
			st.spill.Claimable.Add(st.spill.Claimable, stranded)
		}
	}

	if err := s.save(st); err != nil {
		return err
	}
	if _, err := s.dists.Rewards(rewarded).Add(reward); err != nil {
		return err
	}

	asset, err := s.asset(reward)
	if err != nil {
		return err
	}
	if err := s.pull(asset, caller, total); err != nil {
		return err
	}

	countOp("register")
	logger.Debug("reward registered", "caller", caller, "rewarded", rewarded, "reward", reward, "start", startEpoch, "total", total, "gas", s.charger)
	return s.emit("RewardRegistered", []thor.Address{caller, rewarded, reward},
		uint256.NewInt(startEpoch).ToBig(), bigsOf(amounts))
}

// EnableReward makes the caller's balance in rewarded earn reward from now on.
// Enabling an already enabled reward is a no-op.
func (s *Streams) EnableReward(origin Origin, rewarded, reward thor.Address) error {
	acct, err := s.authorize(origin)
	if err != nil {
		return err
	}
	if rewarded.IsZero() || reward.IsZero() || rewarded == reward {
		return ErrInvalidAddress
	}

	added, err := s.accounts.Enabled(acct, rewarded).Add(reward)
	if err != nil {
		if errors.Is(err, enabledset.ErrLimitReached) {
			return ErrTooManyRewardsEnabled
		}
		return err
	}
	if !added {
		return nil
	}

	// nothing accrues for the time before enabling
	st, err := s.settle(acct, rewarded, reward, new(uint256.Int), false)
	if err != nil {
		return err
	}
	balance, err := s.accounts.Balance(acct, rewarded)
	if err != nil {
		return err
	}
	st.dist.TotalEligible = new(uint256.Int).Add(st.dist.TotalEligible, balance)
	if err := s.save(st); err != nil {
		return err
	}

	countOp("enable")
	logger.Debug("reward enabled", "account", acct, "rewarded", rewarded, "reward", reward, "gas", s.charger)
	return s.emit("RewardEnabled", []thor.Address{acct, rewarded, reward})
}

// DisableReward stops the caller's balance in rewarded from earning reward. With forfeit the
// call does constant work regardless of the distribution's backlog.
// Disabling a reward that is not enabled is a no-op.
func (s *Streams) DisableReward(origin Origin, rewarded, reward thor.Address, forfeit bool) error {
	acct, err := s.authorize(origin)
	if err != nil {
		return err
	}

	removed, err := s.accounts.Enabled(acct, rewarded).Remove(reward)
	if err != nil || !removed {
		return err
	}

	balance, err := s.accounts.Balance(acct, rewarded)
	if err != nil {
		return err
	}
	st, err := s.settle(acct, rewarded, reward, balance, forfeit)
	if err != nil {
		return err
	}
	eligible, underflow := new(uint256.Int).SubOverflow(st.dist.TotalEligible, balance)
	if underflow {
		return errors.Wrap(solidity.ErrUnderflow, "total eligible")
	}
	st.dist.TotalEligible = eligible
	if err := s.save(st); err != nil {
		return err
	}

	countOp("disable")
	logger.Debug("reward disabled", "account", acct, "rewarded", rewarded, "reward", reward, "forfeit", forfeit, "gas", s.charger)
	return s.emit("RewardDisabled", []thor.Address{acct, rewarded, reward}, forfeit)
}

// ClaimReward pays everything the caller earned from the distribution to recipient.
// It returns the amount paid, which may be zero.
func (s *Streams) ClaimReward(origin Origin, rewarded, reward, recipient thor.Address, forfeit bool) (*uint256.Int, error) {
	acct, err := s.authorize(origin)
	if err != nil {
		return nil, err
	}
	if recipient.IsZero() {
		return nil, ErrInvalidRecipient
	}

	weight, err := s.weight(acct, rewarded, reward)
	if err != nil {
		return nil, err
	}
	st, err := s.settle(acct, rewarded, reward, weight, forfeit)
	if err != nil {
		return nil, err
	}

	amount := st.rec.Claimable
	if !amount.IsZero() {
		st.rec.Claimable = new(uint256.Int)
		st.dist.TotalClaimed = new(uint256.Int).Add(st.dist.TotalClaimed, amount)
	}
	if err := s.save(st); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return amount, nil
	}

	if err := s.payout(reward, recipient, amount); err != nil {
		return nil, err
	}

	countOp("claim")
	logger.Debug("reward claimed", "account", acct, "rewarded", rewarded, "reward", reward, "recipient", recipient, "amount", amount, "gas", s.charger)
	return amount, s.emit("RewardClaimed", []thor.Address{acct, rewarded, reward}, ethAddress(recipient), bigOf(amount))
}

// ClaimSpilloverReward pays the spillover of the distribution to recipient. Anyone may call it.
func (s *Streams) ClaimSpilloverReward(origin Origin, rewarded, reward, recipient thor.Address) (*uint256.Int, error) {
	if _, err := s.authorize(origin); err != nil {
		return nil, err
	}
	if recipient.IsZero() {
		return nil, ErrInvalidRecipient
	}
	st, err := s.settle(thor.Address{}, rewarded, reward, nil, false)
	if err != nil {
		return nil, err
	}
	return s.claimSpillover(st, recipient)
}

// UpdateReward settles the distribution and the caller's standing in it without claiming.
// A non-zero recipient also receives the spillover. It returns the spillover paid.
func (s *Streams) UpdateReward(origin Origin, rewarded, reward, recipient thor.Address) (*uint256.Int, error) {
	acct, err := s.authorize(origin)
	if err != nil {
		return nil, err
	}
	weight, err := s.weight(acct, rewarded, reward)
	if err != nil {
		return nil, err
	}
	st, err := s.settle(acct, rewarded, reward, weight, false)
	if err != nil {
		return nil, err
	}
	if recipient.IsZero() {
		return new(uint256.Int), s.save(st)
	}
	return s.claimSpillover(st, recipient)
}

func (s *Streams) claimSpillover(st *settlement, recipient thor.Address) (*uint256.Int, error) {
	if err := st.loadSpillover(s); err != nil {
		return nil, err
	}
	amount := st.spill.Claimable
	if !amount.IsZero() {
		st.spill.Claimable = new(uint256.Int)
		st.dist.TotalClaimed = new(uint256.Int).Add(st.dist.TotalClaimed, amount)
	}
	if err := s.save(st); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return amount, nil
	}

	if err := s.payout(st.reward, recipient, amount); err != nil {
		return nil, err
	}

	countOp("claim_spillover")
	logger.Debug("spillover claimed", "rewarded", st.rewarded, "reward", st.reward, "recipient", recipient, "amount", amount, "gas", s.charger)
	return amount, s.emit("SpilloverClaimed", []thor.Address{st.rewarded, st.reward, recipient}, bigOf(amount))
}

func (s *Streams) payout(reward, recipient thor.Address, amount *uint256.Int) error {
	asset, err := s.asset(reward)
	if err != nil {
		return err
	}
	return asset.Transfer(s.addr, recipient, amount)
}
