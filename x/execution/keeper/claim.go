package keeper

import (
	"context"
	"fmt"

	sdkerrors "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
)

// Claim arbitrates the exclusive right to work an execution request.
//
// Outcomes:
//   - Created: no live claim existed; the caller's stake is escrowed and the
//     caller becomes the holder.
//   - Reclaimed: a live claim existed but its window had elapsed; the previous
//     stake is refunded to the previous holder before the caller's stake is
//     escrowed, so the claim address never holds two parties' funds.
//   - Expired: the request outlived its max height; it is closed with a
//     refund to the requester and no claim is taken. This is a successful
//     call, not an error.
//
// Rejections (active claim, insolvency, unknown request) return an error and
// leave no state behind.
func (k Keeper) Claim(ctx context.Context, msg *types.MsgClaim) (types.ClaimOutcome, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)
	height := uint64(sdkCtx.BlockHeight())

	requester, err := sdk.AccAddressFromBech32(msg.Requester)
	if err != nil {
		return types.ClaimOutcomeRejected, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid requester: %s", err)
	}
	claimer, err := sdk.AccAddressFromBech32(msg.Claimer)
	if err != nil {
		return types.ClaimOutcomeRejected, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid claimer: %s", err)
	}

	execAddr := types.DeriveExecutionAddress(requester, msg.ExecutionID)
	request, found := k.GetExecutionRequest(ctx, execAddr)
	if !found {
		return types.ClaimOutcomeRejected, sdkerrors.Wrapf(types.ErrRequestNotFound, "(%s, %s)", msg.Requester, msg.ExecutionID)
	}
	if request.ExecutionID != msg.ExecutionID {
		return types.ClaimOutcomeRejected, sdkerrors.Wrap(types.ErrInvalidExecutionID, "execution id does not match stored request")
	}

	// Solvency gate: the claimer must be liquid for the full tip, independent
	// of the smaller stake actually locked.
	liquid := k.bankKeeper.SpendableCoins(ctx, claimer).AmountOf(params.Denom)
	if liquid.LT(request.Tip) {
		return types.ClaimOutcomeRejected, sdkerrors.Wrapf(types.ErrInsufficientStake, "claimer balance %s below tip %s", liquid, request.Tip)
	}

	if height > request.MaxBlockHeight {
		if err := k.closeExecution(ctx, execAddr, request, types.ExitCodeExpired); err != nil {
			return types.ClaimOutcomeRejected, err
		}
		k.Logger(ctx).Info("execution expired", "execution_id", msg.ExecutionID, "height", height, "max_height", request.MaxBlockHeight)
		k.metrics.ClaimsTotal.WithLabelValues(types.ClaimOutcomeExpired.String()).Inc()
		return types.ClaimOutcomeExpired, nil
	}

	stake := params.StakeFor(request.Tip)
	stakeCoins := sdk.NewCoins(sdk.NewCoin(params.Denom, stake))
	claimAddr := types.DeriveClaimAddress(execAddr)

	existing, claimed := k.GetClaim(ctx, execAddr)
	outcome := types.ClaimOutcomeCreated
	if claimed {
		if !existing.Contestable(height) {
			return types.ClaimOutcomeRejected, sdkerrors.Wrapf(types.ErrActiveClaimExists, "held by %s until height %d elapses", existing.Holder, existing.CommitmentHeight)
		}

		prevHolder, err := sdk.AccAddressFromBech32(existing.Holder)
		if err != nil {
			return types.ClaimOutcomeRejected, sdkerrors.Wrapf(types.ErrInvalidClaim, "corrupt holder address: %s", err)
		}

		// Refund before escrow: the claim address holds at most one party's
		// stake at any point in the transition.
		refund := sdk.NewCoins(sdk.NewCoin(params.Denom, existing.Stake))
		if err := k.bankKeeper.SendCoins(ctx, claimAddr, prevHolder, refund); err != nil {
			return types.ClaimOutcomeRejected, fmt.Errorf("failed to refund previous stake: %w", err)
		}
		outcome = types.ClaimOutcomeReclaimed
	}

	if err := k.bankKeeper.SendCoins(ctx, claimer, claimAddr, stakeCoins); err != nil {
		return types.ClaimOutcomeRejected, fmt.Errorf("failed to escrow stake: %w", err)
	}

	claim := types.Claim{
		ExecutionAddress: execAddr.String(),
		Holder:           msg.Claimer,
		BlockCommitment:  msg.BlockCommitment,
		CommitmentHeight: height,
		Stake:            stake,
	}
	if err := k.setClaim(ctx, execAddr, claim); err != nil {
		return types.ClaimOutcomeRejected, fmt.Errorf("failed to store claim: %w", err)
	}

	event := sdk.NewEvent(
		types.EventTypeExecutionClaimed,
		sdk.NewAttribute(types.AttributeKeyExecutionID, msg.ExecutionID),
		sdk.NewAttribute(types.AttributeKeyClaimer, msg.Claimer),
		sdk.NewAttribute(types.AttributeKeyStake, stake.String()),
		sdk.NewAttribute(types.AttributeKeyCommitmentHeight, fmt.Sprintf("%d", height)),
		sdk.NewAttribute(types.AttributeKeyClaimOutcome, outcome.String()),
	)
	if outcome == types.ClaimOutcomeReclaimed {
		event = event.AppendAttributes(sdk.NewAttribute(types.AttributeKeyPreviousHolder, existing.Holder))
	}
	sdkCtx.EventManager().EmitEvent(event)
	k.metrics.ClaimsTotal.WithLabelValues(outcome.String()).Inc()

	return outcome, nil
}
