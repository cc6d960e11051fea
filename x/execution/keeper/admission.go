package keeper

import (
	"context"
	"fmt"

	sdkerrors "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
)

// RequestExecution validates and records a new execution request, escrowing
// the tip at the request's derived address. Creation fails if the address is
// already occupied; an existing record is never overwritten.
func (k Keeper) RequestExecution(ctx context.Context, msg *types.MsgRequestExecution) (sdk.AccAddress, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	params := k.GetParams(ctx)

	requester, err := sdk.AccAddressFromBech32(msg.Requester)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid requester: %s", err)
	}
	payer := requester
	if msg.Payer != "" {
		payer, err = sdk.AccAddressFromBech32(msg.Payer)
		if err != nil {
			return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid payer: %s", err)
		}
	}

	if msg.MaxBlockHeight == 0 {
		return nil, types.ErrMaxHeightRequired
	}
	if msg.VerifyInputHash && len(msg.InputDigest) == 0 {
		return nil, types.ErrInputDigestRequired
	}
	if msg.Tip.IsNil() || msg.Tip.LT(params.MinTip) {
		return nil, sdkerrors.Wrapf(types.ErrInvalidRequest, "tip below minimum %s", params.MinTip)
	}

	deployment, found := k.GetDeployment(ctx, msg.ImageID)
	if !found {
		return nil, sdkerrors.Wrapf(types.ErrDeploymentNotFound, "image %s", msg.ImageID)
	}

	auxSets, err := k.loadInputSets(ctx, msg.InputSets)
	if err != nil {
		return nil, err
	}
	resolved, err := types.ResolveInputCount(msg.Inputs, auxSets)
	if err != nil {
		return nil, err
	}
	if required := deployment.RequiredInputCount(); resolved != required {
		return nil, sdkerrors.Wrapf(types.ErrInvalidInputs, "resolved %d inputs, deployment %s requires %d", resolved, msg.ImageID, required)
	}

	execAddr := types.DeriveExecutionAddress(requester, msg.ExecutionID)
	if k.HasExecutionRequest(ctx, execAddr) {
		return nil, sdkerrors.Wrapf(types.ErrRequestExists, "(%s, %s)", msg.Requester, msg.ExecutionID)
	}

	tip := sdk.NewCoins(sdk.NewCoin(params.Denom, msg.Tip))
	if err := k.bankKeeper.SendCoins(ctx, payer, execAddr, tip); err != nil {
		return nil, fmt.Errorf("failed to escrow tip: %w", err)
	}

	request := types.ExecutionRequest{
		ExecutionID:     msg.ExecutionID,
		Requester:       msg.Requester,
		ImageID:         msg.ImageID,
		MaxBlockHeight:  msg.MaxBlockHeight,
		Tip:             msg.Tip,
		Inputs:          msg.Inputs,
		VerifyInputHash: msg.VerifyInputHash,
		InputDigest:     msg.InputDigest,
		Callback:        msg.Callback,
		ProverVersion:   msg.ProverVersion,
	}
	if err := k.setExecutionRequest(ctx, execAddr, request); err != nil {
		return nil, fmt.Errorf("failed to store request: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeExecutionRequested,
			sdk.NewAttribute(types.AttributeKeyExecutionID, msg.ExecutionID),
			sdk.NewAttribute(types.AttributeKeyExecutionAddress, execAddr.String()),
			sdk.NewAttribute(types.AttributeKeyRequester, msg.Requester),
			sdk.NewAttribute(types.AttributeKeyImageID, msg.ImageID),
			sdk.NewAttribute(types.AttributeKeyTip, msg.Tip.String()),
			sdk.NewAttribute(types.AttributeKeyMaxBlockHeight, fmt.Sprintf("%d", msg.MaxBlockHeight)),
		),
	)
	k.metrics.RequestsAdmitted.Inc()

	return execAddr, nil
}

// loadInputSets resolves the auxiliary input set addresses named by a request
// into their records, preserving order.
func (k Keeper) loadInputSets(ctx context.Context, addrs []string) ([]types.InputSet, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	sets := make([]types.InputSet, 0, len(addrs))
	for i, raw := range addrs {
		addr, err := sdk.AccAddressFromBech32(raw)
		if err != nil {
			return nil, sdkerrors.Wrapf(types.ErrInvalidRequest, "input set address %d: %s", i, err)
		}
		inputSet, found := k.GetInputSet(ctx, addr)
		if !found {
			return nil, sdkerrors.Wrapf(types.ErrInputSetNotFound, "address %s", raw)
		}
		sets = append(sets, inputSet)
	}
	return sets, nil
}
