package keeper

import (
	"bytes"
	"context"
	"fmt"

	sdkerrors "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
	"github.com/provex-labs/provex/x/execution/verifier"
)

// SubmitStatus consumes a status report and deterministically closes out the
// request it targets. The pass is single-shot: expiry, completeness, input
// digest assertion, proof verification, then payout or refund. Proving and
// verification failures are terminal transitions, not caller errors; the
// request is closed and the call succeeds.
func (k Keeper) SubmitStatus(ctx context.Context, msg *types.MsgSubmitStatus) (types.ExitCode, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	height := uint64(sdkCtx.BlockHeight())

	requester, err := sdk.AccAddressFromBech32(msg.Requester)
	if err != nil {
		return 0, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid requester: %s", err)
	}
	prover, err := sdk.AccAddressFromBech32(msg.Prover)
	if err != nil {
		return 0, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid prover: %s", err)
	}

	execAddr := types.DeriveExecutionAddress(requester, msg.ExecutionID)
	request, found := k.GetExecutionRequest(ctx, execAddr)
	if !found {
		return 0, sdkerrors.Wrapf(types.ErrRequestNotFound, "(%s, %s)", msg.Requester, msg.ExecutionID)
	}

	if height > request.MaxBlockHeight {
		if err := k.closeExecution(ctx, execAddr, request, types.ExitCodeExpired); err != nil {
			return 0, err
		}
		k.Logger(ctx).Info("execution expired", "execution_id", msg.ExecutionID, "height", height, "max_height", request.MaxBlockHeight)
		return types.ExitCodeExpired, nil
	}

	report := msg.Report()
	if !report.Complete() {
		if err := k.closeExecution(ctx, execAddr, request, types.ExitCodeProvingError); err != nil {
			return 0, err
		}
		k.Logger(ctx).Info("proving failed, cleaning up", "execution_id", msg.ExecutionID)
		return types.ExitCodeProvingError, nil
	}

	if request.VerifyInputHash && !bytes.Equal(request.InputDigest, report.InputDigest) {
		return 0, sdkerrors.Wrapf(types.ErrInputDigestMismatch, "execution %s", msg.ExecutionID)
	}

	verified := k.verifiers.Verify(request.ProverVersion, verifier.Report{
		ImageID:          request.ImageID,
		ExecutionDigest:  report.ExecutionDigest,
		InputDigest:      report.InputDigest,
		AssumptionDigest: report.AssumptionDigest,
		CommittedOutputs: report.CommittedOutputs,
		ExitCodeSystem:   report.ExitCodeSystem,
		ExitCodeUser:     report.ExitCodeUser,
		Proof:            report.Proof,
	})

	if !verified {
		if err := k.closeExecution(ctx, execAddr, request, types.ExitCodeVerifyError); err != nil {
			return 0, err
		}
		k.Logger(ctx).Info("verifying failed, cleaning up", "execution_id", msg.ExecutionID)
		return types.ExitCodeVerifyError, nil
	}

	// Callback account validation happens before any payout so a bad account
	// list aborts settlement with all escrows intact.
	if request.HasCallback() {
		if err := validateCallbackAccounts(request.Callback.ExtraAccounts, msg.ExtraAccounts); err != nil {
			return 0, err
		}
		k.dispatchCallback(sdkCtx, execAddr, request, report, msg.ExtraAccounts)
	}

	payee := prover
	if claim, claimed := k.GetClaim(ctx, execAddr); claimed {
		holder, err := sdk.AccAddressFromBech32(claim.Holder)
		if err != nil {
			return 0, sdkerrors.Wrapf(types.ErrInvalidClaim, "corrupt holder address: %s", err)
		}
		payee = holder
	}

	params := k.GetParams(ctx)
	tip := sdk.NewCoins(sdk.NewCoin(params.Denom, request.Tip))
	if err := k.bankKeeper.SendCoins(ctx, execAddr, payee, tip); err != nil {
		return 0, fmt.Errorf("failed to pay out tip: %w", err)
	}
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTipPaid,
			sdk.NewAttribute(types.AttributeKeyExecutionID, msg.ExecutionID),
			sdk.NewAttribute(types.AttributeKeyProver, payee.String()),
			sdk.NewAttribute(types.AttributeKeyPayout, tip.String()),
		),
	)
	k.metrics.TipsPaid.Inc()

	if err := k.closeExecution(ctx, execAddr, request, types.ExitCodeSuccess); err != nil {
		return 0, err
	}
	k.Logger(ctx).Info("execution settled", "execution_id", msg.ExecutionID, "payee", payee.String(), "tip", request.Tip.String())

	return types.ExitCodeSuccess, nil
}

// validateCallbackAccounts requires the caller-supplied extra account list to
// match the stored callback account list exactly: same length, same address
// and same writability at every position.
func validateCallbackAccounts(stored, supplied []types.AccountMeta) error {
	if len(supplied) != len(stored) {
		return sdkerrors.Wrapf(types.ErrInvalidCallbackAccounts, "supplied %d accounts, callback declares %d", len(supplied), len(stored))
	}
	for i, s := range stored {
		if supplied[i].Address != s.Address {
			return sdkerrors.Wrapf(types.ErrInvalidCallbackAccounts, "account %d: address mismatch", i)
		}
		if supplied[i].Writable != s.Writable {
			return sdkerrors.Wrapf(types.ErrInvalidCallbackAccounts, "account %d: writability mismatch", i)
		}
	}
	return nil
}

// dispatchCallback invokes the configured notification sub-call as the
// request's derived authority. The invocation runs on a branched context so a
// failing callee leaves no partial writes; failure is logged and settlement
// proceeds regardless.
func (k Keeper) dispatchCallback(sdkCtx sdk.Context, execAddr sdk.AccAddress, request types.ExecutionRequest, report types.StatusReport, accounts []types.AccountMeta) {
	program, err := sdk.AccAddressFromBech32(request.Callback.ProgramAddress)
	if err != nil {
		k.Logger(sdkCtx).Error("callback failed", "execution_id", request.ExecutionID, "err", err)
		k.metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}

	payload := request.Callback.InstructionPrefix
	if request.Callback.ForwardOutput && len(report.CommittedOutputs) > 0 {
		payload = make([]byte, 0, len(request.Callback.InstructionPrefix)+len(report.InputDigest)+len(report.CommittedOutputs))
		payload = append(payload, request.Callback.InstructionPrefix...)
		payload = append(payload, report.InputDigest...)
		payload = append(payload, report.CommittedOutputs...)
	}

	if k.callbackInvoker == nil {
		k.Logger(sdkCtx).Error("callback failed", "execution_id", request.ExecutionID, "err", "no callback invoker configured")
		k.metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}

	cacheCtx, write := sdkCtx.CacheContext()
	if err := k.callbackInvoker.Invoke(cacheCtx, program, execAddr, payload, accounts); err != nil {
		k.Logger(sdkCtx).Error("callback failed", "execution_id", request.ExecutionID, "program", request.Callback.ProgramAddress, "err", err)
		sdkCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeCallbackFailed,
				sdk.NewAttribute(types.AttributeKeyExecutionID, request.ExecutionID),
				sdk.NewAttribute(types.AttributeKeyCallbackProgram, request.Callback.ProgramAddress),
			),
		)
		k.metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}
	write()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCallbackDispatched,
			sdk.NewAttribute(types.AttributeKeyExecutionID, request.ExecutionID),
			sdk.NewAttribute(types.AttributeKeyCallbackProgram, request.Callback.ProgramAddress),
		),
	)
	k.metrics.CallbacksTotal.WithLabelValues("dispatched").Inc()
}
