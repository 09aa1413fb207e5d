// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/abi"
	"github.com/vechain/streams/builtin/gascharger"
	"github.com/vechain/streams/builtin/reverts"
	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

// MaxFeeBps bounds the transfer fee, in basis points.
const MaxFeeBps = 1000

var (
	logger = log.WithContext("pkg", "token")

	slotConfig     = thor.BytesToBytes32([]byte("config"))
	slotBalances   = thor.BytesToBytes32([]byte("balances"))
	slotAllowances = thor.BytesToBytes32([]byte("allowances"))
	slotSupply     = thor.BytesToBytes32([]byte("total-supply"))

	ErrInvalidAddress        = reverts.New("invalid address")
	ErrInsufficientBalance   = reverts.New("insufficient balance")
	ErrInsufficientAllowance = reverts.New("insufficient allowance")
	ErrNotMinter             = reverts.New("not minter")
	ErrInvalidFee            = reverts.New("invalid fee")
	ErrNotDeployed           = reverts.New("token not deployed")
	ErrAlreadyDeployed       = reverts.New("token already deployed")
	ErrSupplyOverflow        = reverts.New("supply overflow")
	errNoTrackerResolver     = errors.New("tracker resolver missing")
)

const abiJSON = `[
	{"type":"event","name":"Transfer","inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"Approval","inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"spender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}
	]}
]`

// ABI describes the events emitted by tokens.
var ABI = abi.MustNew([]byte(abiJSON))

// BalanceTracker receives every balance change of a tracked token.
type BalanceTracker interface {
	BalanceTrackerHook(account thor.Address, newBalance *uint256.Int, forfeitRecentReward bool) error
}

// TrackerResolver binds the balance tracker deployed at addr to env.
type TrackerResolver func(env *xenv.Environment, addr thor.Address) (BalanceTracker, error)

// Config holds the deployment parameters of a token.
type Config struct {
	Symbol  string
	Minter  thor.Address // zero lets anyone mint
	FeeBps  uint64       // burnt from every transfer
	Tracker thor.Address // zero disables balance tracking
}

func (c *Config) IsEmpty() bool {
	return c.Symbol == "" && c.Minter.IsZero() && c.FeeBps == 0 && c.Tracker.IsZero()
}

// Token implements a fungible token with storage backed balances.
// An instance is bound to the environment of a single call, whose caller is the msg sender.
type Token struct {
	addr     thor.Address
	env      *xenv.Environment
	config   *Config
	trackers TrackerResolver

	balances   *solidity.Mapping[thor.Address, *uint256.Int]
	allowances *solidity.Mapping[thor.Bytes32, *uint256.Int]
	supply     *solidity.Uint256
}

// Deploy writes the token configuration at addr.
func Deploy(addr thor.Address, env *xenv.Environment, config *Config) error {
	if config.Symbol == "" {
		return errors.New("empty symbol")
	}
	if config.FeeBps > MaxFeeBps {
		return ErrInvalidFee
	}
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	v := solidity.NewVariable[*Config](sctx, slotConfig)
	existing, err := v.Get()
	if err != nil {
		return err
	}
	if existing != nil && !existing.IsEmpty() {
		return ErrAlreadyDeployed
	}
	logger.Info("token deployed", "address", addr, "symbol", config.Symbol, "feeBps", config.FeeBps, "tracker", config.Tracker)
	return v.Set(config, true)
}

// New binds the token deployed at addr to env.
func New(addr thor.Address, env *xenv.Environment, trackers TrackerResolver) (*Token, error) {
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	config, err := solidity.NewVariable[*Config](sctx, slotConfig).Get()
	if err != nil {
		return nil, err
	}
	if config == nil || config.IsEmpty() {
		return nil, ErrNotDeployed
	}
	return &Token{
		addr:       addr,
		env:        env,
		config:     config,
		trackers:   trackers,
		balances:   solidity.NewMapping[thor.Address, *uint256.Int](sctx, slotBalances),
		allowances: solidity.NewMapping[thor.Bytes32, *uint256.Int](sctx, slotAllowances),
		supply:     solidity.NewUint256(sctx, slotSupply),
	}, nil
}

func allowanceKey(owner, spender thor.Address) thor.Bytes32 {
	return thor.Blake2b(owner.Bytes(), spender.Bytes())
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func (t *Token) Address() thor.Address { return t.addr }
func (t *Token) Config() Config        { return *t.config }

func (t *Token) BalanceOf(owner thor.Address) (*uint256.Int, error) {
	bal, err := t.balances.Get(owner)
	if err != nil {
		return nil, err
	}
	return orZero(bal), nil
}

func (t *Token) Allowance(owner, spender thor.Address) (*uint256.Int, error) {
	v, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return nil, err
	}
	return orZero(v), nil
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.supply.Get()
}

// Mint creates amount new tokens for to.
func (t *Token) Mint(to thor.Address, amount *uint256.Int) error {
	if !t.config.Minter.IsZero() && t.env.Caller() != t.config.Minter {
		return ErrNotMinter
	}
	if to.IsZero() {
		return ErrInvalidAddress
	}
	if err := t.supply.Add(amount); err != nil {
		if errors.Is(err, solidity.ErrOverflow) {
			return ErrSupplyOverflow
		}
		return err
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	newBal := new(uint256.Int).Add(bal, amount)
	if err := t.balances.Set(to, newBal, bal.IsZero()); err != nil {
		return err
	}
	if err := t.emit("Transfer", thor.Address{}, to, amount); err != nil {
		return err
	}
	return t.track(to, newBal)
}

// Approve lets spender move up to amount of the caller's tokens.
func (t *Token) Approve(spender thor.Address, amount *uint256.Int) error {
	owner := t.env.Caller()
	if spender.IsZero() {
		return ErrInvalidAddress
	}
	prev, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return err
	}
	if err := t.allowances.Set(allowanceKey(owner, spender), amount, prev == nil); err != nil {
		return err
	}
	return t.emit("Approval", owner, spender, amount)
}

// Transfer moves amount from the caller to to.
func (t *Token) Transfer(to thor.Address, amount *uint256.Int) error {
	return t.transfer(t.env.Caller(), to, amount)
}

// TransferFrom moves amount from from to to, spending the caller's allowance.
func (t *Token) TransferFrom(from, to thor.Address, amount *uint256.Int) error {
	spender := t.env.Caller()
	if spender != from {
		allowance, err := t.Allowance(from, spender)
		if err != nil {
			return err
		}
		if allowance.Lt(amount) {
			return ErrInsufficientAllowance
		}
		if !allowance.Eq(maxUint256) {
			if err := t.allowances.Update(allowanceKey(from, spender), new(uint256.Int).Sub(allowance, amount)); err != nil {
				return err
			}
		}
	}
	return t.transfer(from, to, amount)
}

var maxUint256 = new(uint256.Int).SetAllOne()

func (t *Token) transfer(from, to thor.Address, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrInvalidAddress
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	fromBal = new(uint256.Int).Sub(fromBal, amount)
	if err := t.balances.Update(from, fromBal); err != nil {
		return err
	}

	received := amount
	if t.config.FeeBps > 0 {
		fee := new(uint256.Int).Mul(amount, uint256.NewInt(t.config.FeeBps))
		fee.Div(fee, uint256.NewInt(10_000))
		received = new(uint256.Int).Sub(amount, fee)
		if err := t.supply.Sub(fee); err != nil {
			return errors.Wrap(err, "burn fee")
		}
	}

	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	toBal = new(uint256.Int).Add(toBal, received)
	if err := t.balances.Set(to, toBal, toBal.Eq(received)); err != nil {
		return err
	}

	if err := t.emit("Transfer", from, to, received); err != nil {
		return err
	}
	if from != to {
		if err := t.track(from, fromBal); err != nil {
			return err
		}
	}
	return t.track(to, toBal)
}

// track pushes balance to the configured tracker. A failed push is retried once in forfeit mode.
// If the retry fails too the error is returned, so the balance change is rolled back with the call
// and the tracker never books a balance the token does not hold.
func (t *Token) track(account thor.Address, balance *uint256.Int) error {
	tracker := t.config.Tracker
	if tracker.IsZero() {
		return nil
	}
	push := func(forfeit bool) error {
		return t.env.Call(t.addr, func(env *xenv.Environment) error {
			if t.trackers == nil {
				return errNoTrackerResolver
			}
			bt, err := t.trackers(env, tracker)
			if err != nil {
				return err
			}
			return bt.BalanceTrackerHook(account, balance, forfeit)
		})
	}
	err := push(false)
	if err == nil {
		return nil
	}
	logger.Debug("balance tracker failed, retrying with forfeit", "token", t.addr, "account", account, "err", err)
	if err := push(true); err != nil {
		logger.Warn("balance tracker failed", "token", t.addr, "account", account, "err", err)
		return errors.Wrap(err, "balance tracker")
	}
	return nil
}

func (t *Token) emit(name string, a, b thor.Address, value *uint256.Int) error {
	ev, ok := ABI.EventByName(name)
	if !ok {
		return errors.Errorf("unknown event %s", name)
	}
	data, err := ev.Encode(value.ToBig())
	if err != nil {
		return err
	}
	t.env.Log(t.addr, []thor.Bytes32{
		ev.ID(),
		thor.BytesToBytes32(a.Bytes()),
		thor.BytesToBytes32(b.Bytes()),
	}, data)
	return nil
}

// Client calls a token the way another contract would: every state changing method runs in a
// nested frame whose caller is the acting account.
type Client struct {
	addr     thor.Address
	env      *xenv.Environment
	trackers TrackerResolver
}

func NewClient(addr thor.Address, env *xenv.Environment, trackers TrackerResolver) *Client {
	return &Client{addr: addr, env: env, trackers: trackers}
}

func (c *Client) bind(env *xenv.Environment) (*Token, error) {
	return New(c.addr, env, c.trackers)
}

func (c *Client) BalanceOf(owner thor.Address) (*uint256.Int, error) {
	t, err := c.bind(c.env)
	if err != nil {
		return nil, err
	}
	return t.BalanceOf(owner)
}

func (c *Client) Transfer(from, to thor.Address, amount *uint256.Int) error {
	return c.env.Call(from, func(env *xenv.Environment) error {
		t, err := c.bind(env)
		if err != nil {
			return err
		}
		return t.Transfer(to, amount)
	})
}

func (c *Client) TransferFrom(spender, from, to thor.Address, amount *uint256.Int) error {
	return c.env.Call(spender, func(env *xenv.Environment) error {
		t, err := c.bind(env)
		if err != nil {
			return err
		}
		return t.TransferFrom(from, to, amount)
	})
}
