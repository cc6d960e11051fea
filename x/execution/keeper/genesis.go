package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
)

// InitGenesis installs a validated genesis state. Record addresses are
// recomputed from the records' own fields, so the genesis file never carries
// derived addresses for requests.
func (k Keeper) InitGenesis(ctx context.Context, state types.GenesisState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, state.Params); err != nil {
		return err
	}

	for _, deployment := range state.Deployments {
		if err := k.setDeployment(ctx, deployment); err != nil {
			return err
		}
	}

	for _, inputSet := range state.InputSets {
		owner, err := sdk.AccAddressFromBech32(inputSet.Owner)
		if err != nil {
			return fmt.Errorf("input set %s: %w", inputSet.ID, err)
		}
		bz, err := k.cdc.MarshalJSON(inputSet)
		if err != nil {
			return err
		}
		k.getStore(ctx).Set(InputSetKey(types.DeriveInputSetAddress(owner, inputSet.ID)), bz)
	}

	for _, request := range state.Requests {
		requester, err := sdk.AccAddressFromBech32(request.Requester)
		if err != nil {
			return fmt.Errorf("request %s: %w", request.ExecutionID, err)
		}
		execAddr := types.DeriveExecutionAddress(requester, request.ExecutionID)
		if err := k.setExecutionRequest(ctx, execAddr, request); err != nil {
			return err
		}
	}

	for _, claim := range state.Claims {
		execAddr, err := sdk.AccAddressFromBech32(claim.ExecutionAddress)
		if err != nil {
			return fmt.Errorf("claim on %s: %w", claim.ExecutionAddress, err)
		}
		if err := k.setClaim(ctx, execAddr, claim); err != nil {
			return err
		}
	}

	return nil
}

// ExportGenesis extracts the module's full state.
func (k Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	state := &types.GenesisState{
		Params: k.GetParams(ctx),
	}

	store := k.getStore(ctx)
	iterator := store.Iterator(nil, nil)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key, value := iterator.Key(), iterator.Value()
		if len(key) == 0 {
			continue
		}
		switch key[0] {
		case DeploymentKeyPrefix[0]:
			var deployment types.Deployment
			k.cdc.MustUnmarshalJSON(value, &deployment)
			state.Deployments = append(state.Deployments, deployment)
		case InputSetKeyPrefix[0]:
			var inputSet types.InputSet
			k.cdc.MustUnmarshalJSON(value, &inputSet)
			state.InputSets = append(state.InputSets, inputSet)
		case RequestKeyPrefix[0]:
			var request types.ExecutionRequest
			k.cdc.MustUnmarshalJSON(value, &request)
			state.Requests = append(state.Requests, request)
		case ClaimKeyPrefix[0]:
			var claim types.Claim
			k.cdc.MustUnmarshalJSON(value, &claim)
			state.Claims = append(state.Claims, claim)
		}
	}

	return state
}
