// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operators

import (
	"github.com/vechain/streams/abi"
	"github.com/vechain/streams/builtin/gascharger"
	"github.com/vechain/streams/builtin/reverts"
	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/streams/enabledset"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var (
	logger = log.WithContext("pkg", "operators")

	slotOperators = thor.BytesToBytes32([]byte("operators"))

	ErrInvalidOperator = reverts.New("invalid operator")
)

const abiJSON = `[
	{"type":"event","name":"OperatorSet","inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"operator","type":"address","indexed":true},
		{"name":"authorized","type":"bool","indexed":false}
	]}
]`

// ABI describes the events emitted by the operators registry.
var ABI = abi.MustNew([]byte(abiJSON))

// Operators is the registry of accounts allowed to act on behalf of an owner.
type Operators struct {
	addr thor.Address
	env  *xenv.Environment
	sctx *solidity.Context
}

// New create a new instance.
func New(addr thor.Address, env *xenv.Environment) *Operators {
	return &Operators{
		addr: addr,
		env:  env,
		sctx: solidity.NewContext(addr, env.State(), gascharger.New(env)),
	}
}

func (o *Operators) set(owner thor.Address) *enabledset.Set {
	return enabledset.New(o.sctx, thor.Blake2b(slotOperators.Bytes(), owner.Bytes()), 0)
}

// IsOperator returns whether operator may act for owner.
func (o *Operators) IsOperator(owner, operator thor.Address) (bool, error) {
	return o.set(owner).Contains(operator)
}

// List returns the operators of owner, in the order they were authorized.
func (o *Operators) List(owner thor.Address) ([]thor.Address, error) {
	return o.set(owner).Members()
}

// SetOperator authorizes or revokes operator for the caller.
// It returns false if nothing changed.
func (o *Operators) SetOperator(operator thor.Address, authorized bool) (bool, error) {
	owner := o.env.Caller()
	if operator.IsZero() || operator == owner {
		return false, ErrInvalidOperator
	}

	var (
		changed bool
		err     error
	)
	if authorized {
		changed, err = o.set(owner).Add(operator)
	} else {
		changed, err = o.set(owner).Remove(operator)
	}
	if err != nil || !changed {
		return false, err
	}

	ev, _ := ABI.EventByName("OperatorSet")
	data, err := ev.Encode(authorized)
	if err != nil {
		return false, err
	}
	o.env.Log(o.addr, []thor.Bytes32{
		ev.ID(),
		thor.BytesToBytes32(owner.Bytes()),
		thor.BytesToBytes32(operator.Bytes()),
	}, data)

	logger.Debug("operator set", "owner", owner, "operator", operator, "authorized", authorized)
	return true, nil
}

// Authorize resolves origin to the account it acts for. The sender acts for itself, or for
// OnBehalfOf when the sender is one of its operators.
func (o *Operators) Authorize(origin streams.Origin) (thor.Address, error) {
	if origin.OnBehalfOf.IsZero() || origin.OnBehalfOf == origin.Sender {
		return origin.Sender, nil
	}
	ok, err := o.IsOperator(origin.OnBehalfOf, origin.Sender)
	if err != nil {
		return thor.Address{}, err
	}
	if !ok {
		return thor.Address{}, streams.ErrNotAuthorized
	}
	return origin.OnBehalfOf, nil
}
