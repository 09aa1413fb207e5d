// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/api/types"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/runtime"
	"github.com/vechain/streams/thor"
)

const addrPattern = "0x[0-9a-fA-F]{40}"

type Streams struct {
	eng         *engine.Engine
	allowWrites bool
}

func New(eng *engine.Engine, allowWrites bool) *Streams {
	return &Streams{
		eng,
		allowWrites,
	}
}

func variant(req *http.Request) engine.Variant {
	return engine.Variant(mux.Vars(req)["variant"])
}

func (s *Streams) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	epoch, err := restutil.OptionalUint64(req, "epoch")
	if err != nil {
		return err
	}
	info, err := s.eng.Epoch(variant(req), epoch)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertEpoch(info))
}

func (s *Streams) handleGetEpochAt(w http.ResponseWriter, req *http.Request) error {
	t, err := restutil.Uint64(req, "time")
	if err != nil {
		return err
	}
	epoch, err := s.eng.EpochOf(variant(req), t)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"epoch": epoch})
}

func (s *Streams) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	rewarded, err := restutil.Address(req, "rewarded")
	if err != nil {
		return err
	}
	rewards, err := s.eng.Rewards(variant(req), rewarded)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, rewards)
}

func (s *Streams) handleGetDistribution(w http.ResponseWriter, req *http.Request) error {
	rewarded, err := restutil.Address(req, "rewarded")
	if err != nil {
		return err
	}
	reward, err := restutil.Address(req, "reward")
	if err != nil {
		return err
	}
	v := variant(req)
	view, err := s.eng.Distribution(v, rewarded, reward)
	if err != nil {
		return err
	}
	current, err := s.eng.RewardAmount(v, rewarded, reward, nil)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertDistribution(view, current))
}

func (s *Streams) handleGetAmount(w http.ResponseWriter, req *http.Request) error {
	rewarded, err := restutil.Address(req, "rewarded")
	if err != nil {
		return err
	}
	reward, err := restutil.Address(req, "reward")
	if err != nil {
		return err
	}
	epoch, err := restutil.Uint64(req, "epoch")
	if err != nil {
		return err
	}
	amount, err := s.eng.RewardAmount(variant(req), rewarded, reward, &epoch)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Amount{restutil.JSONAmount(amount)})
}

func (s *Streams) handleGetSpillover(w http.ResponseWriter, req *http.Request) error {
	rewarded, err := restutil.Address(req, "rewarded")
	if err != nil {
		return err
	}
	reward, err := restutil.Address(req, "reward")
	if err != nil {
		return err
	}
	amount, err := s.eng.SpilloverReward(variant(req), rewarded, reward)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Amount{restutil.JSONAmount(amount)})
}

func (s *Streams) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	acct, err := restutil.Address(req, "account")
	if err != nil {
		return err
	}
	rewarded, err := restutil.Address(req, "rewarded")
	if err != nil {
		return err
	}
	v := variant(req)
	balance, err := s.eng.BalanceOf(v, acct, rewarded)
	if err != nil {
		return err
	}
	enabled, err := s.eng.EnabledRewards(v, acct, rewarded)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Account{
		Balance:        restutil.JSONAmount(balance),
		EnabledRewards: enabled,
	})
}

func (s *Streams) handleGetAccountReward(w http.ResponseWriter, req *http.Request) error {
	acct, err := restutil.Address(req, "account")
	if err != nil {
		return err
	}
	rewarded, err := restutil.Address(req, "rewarded")
	if err != nil {
		return err
	}
	reward, err := restutil.Address(req, "reward")
	if err != nil {
		return err
	}
	forfeit, err := restutil.Bool(req, "forfeit")
	if err != nil {
		return err
	}
	v := variant(req)
	enabled, err := s.eng.IsRewardEnabled(v, acct, rewarded, reward)
	if err != nil {
		return err
	}
	earned, err := s.eng.EarnedReward(v, acct, rewarded, reward, forfeit)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &AccountReward{
		Enabled: enabled,
		Earned:  restutil.JSONAmount(earned),
	})
}

// call decodes the request body and runs fn, answering with its receipt.
func (s *Streams) call(fn func(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error)) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		if !s.allowWrites {
			return restutil.Forbidden(errors.New("writes disabled"))
		}
		var body CallRequest
		if err := restutil.ParseJSON(req.Body, &body); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "body"))
		}
		amount, receipt, err := fn(variant(req), &body)
		if err != nil {
			return err
		}
		result := &types.CallResult{Receipt: types.ConvertReceipt(receipt)}
		if amount != nil {
			result.Amount = restutil.JSONAmount(amount)
		}
		return restutil.WriteJSON(w, result)
	}
}

func (s *Streams) register(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	amounts, err := r.amounts()
	if err != nil {
		return nil, nil, restutil.BadRequest(err)
	}
	receipt, err := s.eng.RegisterReward(v, r.origin(), r.Rewarded, r.Reward, r.StartEpoch, amounts)
	return nil, receipt, err
}

func (s *Streams) enable(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	receipt, err := s.eng.EnableReward(v, r.origin(), r.Rewarded, r.Reward)
	return nil, receipt, err
}

func (s *Streams) disable(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	receipt, err := s.eng.DisableReward(v, r.origin(), r.Rewarded, r.Reward, r.Forfeit)
	return nil, receipt, err
}

func (s *Streams) claim(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	return s.eng.ClaimReward(v, r.origin(), r.Rewarded, r.Reward, r.recipient(), r.Forfeit)
}

func (s *Streams) claimSpillover(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	return s.eng.ClaimSpilloverReward(v, r.origin(), r.Rewarded, r.Reward, r.recipient())
}

// update leaves the spillover in place unless a recipient is given.
func (s *Streams) update(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	var recipient thor.Address
	if r.Recipient != nil {
		recipient = *r.Recipient
	}
	return s.eng.UpdateReward(v, r.origin(), r.Rewarded, r.Reward, recipient)
}

func (s *Streams) stake(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	if v != engine.Staking {
		return nil, nil, restutil.NotFound(errors.New("stake is only supported by the staking variant"))
	}
	amount, err := restutil.Amount(r.Amount)
	if err != nil {
		return nil, nil, restutil.BadRequest(errors.WithMessage(err, "amount"))
	}
	receipt, err := s.eng.Stake(r.origin(), r.Rewarded, amount)
	return nil, receipt, err
}

func (s *Streams) unstake(v engine.Variant, r *CallRequest) (*uint256.Int, *runtime.Receipt, error) {
	if v != engine.Staking {
		return nil, nil, restutil.NotFound(errors.New("unstake is only supported by the staking variant"))
	}
	amount, err := restutil.Amount(r.Amount)
	if err != nil {
		return nil, nil, restutil.BadRequest(errors.WithMessage(err, "amount"))
	}
	receipt, err := s.eng.Unstake(r.origin(), r.Rewarded, amount, r.recipient(), r.Forfeit)
	return nil, receipt, err
}

func (s *Streams) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix + "/{variant:staking|tracking}").Subrouter()

	sub.Path("/epoch").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/epoch").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetEpoch))
	sub.Path("/epoch/at/{time}").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/epoch/at/{time}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetEpochAt))
	sub.Path("/accounts/{account:" + addrPattern + "}/{rewarded:" + addrPattern + "}").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/accounts/{account}/{rewarded}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/accounts/{account:" + addrPattern + "}/{rewarded:" + addrPattern + "}/{reward:" + addrPattern + "}").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/accounts/{account}/{rewarded}/{reward}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetAccountReward))
	sub.Path("/{rewarded:" + addrPattern + "}").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/{rewarded}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRewards))
	sub.Path("/{rewarded:" + addrPattern + "}/{reward:" + addrPattern + "}").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/{rewarded}/{reward}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetDistribution))
	sub.Path("/{rewarded:" + addrPattern + "}/{reward:" + addrPattern + "}/amounts/{epoch}").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/{rewarded}/{reward}/amounts/{epoch}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetAmount))
	sub.Path("/{rewarded:" + addrPattern + "}/{reward:" + addrPattern + "}/spillover").
		Methods(http.MethodGet).
		Name("GET /streams/{variant}/{rewarded}/{reward}/spillover").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetSpillover))

	for path, fn := range map[string]func(engine.Variant, *CallRequest) (*uint256.Int, *runtime.Receipt, error){
		"/register":        s.register,
		"/enable":          s.enable,
		"/disable":         s.disable,
		"/claim":           s.claim,
		"/claim-spillover": s.claimSpillover,
		"/update":          s.update,
		"/stake":           s.stake,
		"/unstake":         s.unstake,
	} {
		sub.Path(path).
			Methods(http.MethodPost).
			Name("POST /streams/{variant}" + path).
			HandlerFunc(restutil.WrapHandlerFunc(s.call(fn)))
	}
}
