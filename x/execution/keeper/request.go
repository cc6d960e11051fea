package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
)

// GetExecutionRequest loads the request record stored at the derived address.
func (k Keeper) GetExecutionRequest(ctx context.Context, execAddr sdk.AccAddress) (types.ExecutionRequest, bool) {
	store := k.getStore(ctx)
	bz := store.Get(RequestKey(execAddr))
	if bz == nil {
		return types.ExecutionRequest{}, false
	}
	var request types.ExecutionRequest
	k.cdc.MustUnmarshalJSON(bz, &request)
	return request, true
}

// HasExecutionRequest reports whether the derived address is occupied.
func (k Keeper) HasExecutionRequest(ctx context.Context, execAddr sdk.AccAddress) bool {
	return k.getStore(ctx).Has(RequestKey(execAddr))
}

func (k Keeper) setExecutionRequest(ctx context.Context, execAddr sdk.AccAddress, request types.ExecutionRequest) error {
	bz, err := k.cdc.MarshalJSON(request)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(RequestKey(execAddr), bz)
	return nil
}

// GetClaim loads the live claim for the execution record at execAddr.
func (k Keeper) GetClaim(ctx context.Context, execAddr sdk.AccAddress) (types.Claim, bool) {
	store := k.getStore(ctx)
	bz := store.Get(ClaimKey(types.DeriveClaimAddress(execAddr)))
	if bz == nil {
		return types.Claim{}, false
	}
	var claim types.Claim
	k.cdc.MustUnmarshalJSON(bz, &claim)
	return claim, true
}

func (k Keeper) setClaim(ctx context.Context, execAddr sdk.AccAddress, claim types.Claim) error {
	bz, err := k.cdc.MarshalJSON(claim)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(ClaimKey(types.DeriveClaimAddress(execAddr)), bz)
	return nil
}

// IterateExecutionRequests iterates over all stored requests.
func (k Keeper) IterateExecutionRequests(ctx context.Context, cb func(request types.ExecutionRequest) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, RequestKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var request types.ExecutionRequest
		k.cdc.MustUnmarshalJSON(iterator.Value(), &request)
		if cb(request) {
			break
		}
	}
}

// IterateClaims iterates over all live claims.
func (k Keeper) IterateClaims(ctx context.Context, cb func(claim types.Claim) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, ClaimKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var claim types.Claim
		k.cdc.MustUnmarshalJSON(iterator.Value(), &claim)
		if cb(claim) {
			break
		}
	}
}

// closeExecution terminates the request record at execAddr with the given
// exit code. The live claim, if any, is destroyed with it: the escrowed stake
// goes back to its holder, and the request's residual balance goes back to
// the requester. Exclusivity never outlives the record it guards.
func (k Keeper) closeExecution(ctx context.Context, execAddr sdk.AccAddress, request types.ExecutionRequest, code types.ExitCode) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	store := k.getStore(ctx)

	requester, err := sdk.AccAddressFromBech32(request.Requester)
	if err != nil {
		return fmt.Errorf("corrupt request record %s: %w", request.ExecutionID, err)
	}

	claimAddr := types.DeriveClaimAddress(execAddr)
	if claim, found := k.GetClaim(ctx, execAddr); found {
		holder, err := sdk.AccAddressFromBech32(claim.Holder)
		if err != nil {
			return fmt.Errorf("corrupt claim record for %s: %w", request.ExecutionID, err)
		}
		if stake := k.bankKeeper.GetAllBalances(ctx, claimAddr); !stake.IsZero() {
			if err := k.bankKeeper.SendCoins(ctx, claimAddr, holder, stake); err != nil {
				return fmt.Errorf("failed to release claim stake: %w", err)
			}
		}
		store.Delete(ClaimKey(claimAddr))
	}

	residual := k.bankKeeper.GetAllBalances(ctx, execAddr)
	if !residual.IsZero() {
		if err := k.bankKeeper.SendCoins(ctx, execAddr, requester, residual); err != nil {
			return fmt.Errorf("failed to refund residual balance: %w", err)
		}
	}

	store.Delete(RequestKey(execAddr))

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeExecutionClosed,
			sdk.NewAttribute(types.AttributeKeyExecutionID, request.ExecutionID),
			sdk.NewAttribute(types.AttributeKeyRequester, request.Requester),
			sdk.NewAttribute(types.AttributeKeyExitCode, code.String()),
			sdk.NewAttribute(types.AttributeKeyRefund, residual.String()),
		),
	)
	k.metrics.SettlementsTotal.WithLabelValues(code.String()).Inc()

	return nil
}
