package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisState is the execution module's exported state. Requests and claims
// are stored at addresses recomputable from their own fields, so only the
// records themselves are exported.
type GenesisState struct {
	Params      Params             `json:"params"`
	Deployments []Deployment       `json:"deployments,omitempty"`
	InputSets   []InputSet         `json:"input_sets,omitempty"`
	Requests    []ExecutionRequest `json:"requests,omitempty"`
	Claims      []Claim            `json:"claims,omitempty"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	images := make(map[string]struct{}, len(gs.Deployments))
	for _, d := range gs.Deployments {
		if d.ImageID == "" {
			return fmt.Errorf("deployment with empty image id")
		}
		if _, ok := images[d.ImageID]; ok {
			return fmt.Errorf("duplicate deployment for image %s", d.ImageID)
		}
		images[d.ImageID] = struct{}{}
		if _, err := sdk.AccAddressFromBech32(d.Owner); err != nil {
			return fmt.Errorf("deployment %s: invalid owner: %w", d.ImageID, err)
		}
	}

	requests := make(map[string]struct{}, len(gs.Requests))
	for _, r := range gs.Requests {
		requester, err := sdk.AccAddressFromBech32(r.Requester)
		if err != nil {
			return fmt.Errorf("request %s: invalid requester: %w", r.ExecutionID, err)
		}
		if r.ExecutionID == "" {
			return fmt.Errorf("request with empty execution id")
		}
		if r.MaxBlockHeight == 0 {
			return fmt.Errorf("request %s: max block height must be nonzero", r.ExecutionID)
		}
		if r.Tip.IsNil() || !r.Tip.IsPositive() {
			return fmt.Errorf("request %s: tip must be positive", r.ExecutionID)
		}
		addr := DeriveExecutionAddress(requester, r.ExecutionID).String()
		if _, ok := requests[addr]; ok {
			return fmt.Errorf("duplicate request for (%s, %s)", r.Requester, r.ExecutionID)
		}
		requests[addr] = struct{}{}
	}

	claims := make(map[string]struct{}, len(gs.Claims))
	for _, c := range gs.Claims {
		if _, err := sdk.AccAddressFromBech32(c.ExecutionAddress); err != nil {
			return fmt.Errorf("claim: invalid execution address: %w", err)
		}
		if _, err := sdk.AccAddressFromBech32(c.Holder); err != nil {
			return fmt.Errorf("claim on %s: invalid holder: %w", c.ExecutionAddress, err)
		}
		if c.Stake.IsNil() || c.Stake.IsNegative() {
			return fmt.Errorf("claim on %s: invalid stake", c.ExecutionAddress)
		}
		if _, ok := claims[c.ExecutionAddress]; ok {
			return fmt.Errorf("duplicate claim on %s", c.ExecutionAddress)
		}
		claims[c.ExecutionAddress] = struct{}{}
	}

	return nil
}
