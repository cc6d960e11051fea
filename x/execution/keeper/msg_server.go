package keeper

import (
	"context"

	sdkerrors "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
)

// MsgServer handles the execution module's messages. Signature verification
// over each message's declared signers is the host chain's job; handlers
// trust the signer fields once a message reaches them.
type MsgServer struct {
	Keeper *Keeper
}

// NewMsgServerImpl returns the module's message server.
func NewMsgServerImpl(keeper *Keeper) MsgServer {
	return MsgServer{Keeper: keeper}
}

// Deploy handles MsgDeploy.
func (m MsgServer) Deploy(ctx context.Context, msg *types.MsgDeploy) (*types.MsgDeployResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	deployer, err := sdk.AccAddressFromBech32(msg.Deployer)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid deployer: %s", err)
	}

	addr, err := m.Keeper.Deploy(ctx, deployer, types.Deployment{
		ImageID:    msg.ImageID,
		Owner:      msg.Deployer,
		ProgramURL: msg.ProgramURL,
		Size:       msg.Size,
		Inputs:     msg.Inputs,
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgDeployResponse{DeploymentAddress: addr.String()}, nil
}

// PublishInputSet handles MsgPublishInputSet.
func (m MsgServer) PublishInputSet(ctx context.Context, msg *types.MsgPublishInputSet) (*types.MsgPublishInputSetResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	owner, err := sdk.AccAddressFromBech32(msg.Owner)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "invalid owner: %s", err)
	}

	addr, err := m.Keeper.PublishInputSet(ctx, owner, types.InputSet{
		ID:     msg.InputSetID,
		Owner:  msg.Owner,
		Inputs: msg.Inputs,
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgPublishInputSetResponse{InputSetAddress: addr.String()}, nil
}

// RequestExecution handles MsgRequestExecution.
func (m MsgServer) RequestExecution(ctx context.Context, msg *types.MsgRequestExecution) (*types.MsgRequestExecutionResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	addr, err := m.Keeper.RequestExecution(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgRequestExecutionResponse{ExecutionAddress: addr.String()}, nil
}

// Claim handles MsgClaim.
func (m MsgServer) Claim(ctx context.Context, msg *types.MsgClaim) (*types.MsgClaimResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	outcome, err := m.Keeper.Claim(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimResponse{Outcome: outcome.String()}, nil
}

// SubmitStatus handles MsgSubmitStatus.
func (m MsgServer) SubmitStatus(ctx context.Context, msg *types.MsgSubmitStatus) (*types.MsgSubmitStatusResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	code, err := m.Keeper.SubmitStatus(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgSubmitStatusResponse{ExitCode: code.String()}, nil
}

// UpdateParams handles MsgUpdateParams.
func (m MsgServer) UpdateParams(ctx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if msg.Authority != m.Keeper.GetAuthority() {
		return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "expected authority %s, got %s", m.Keeper.GetAuthority(), msg.Authority)
	}
	if err := m.Keeper.SetParams(ctx, msg.Params); err != nil {
		return nil, sdkerrors.Wrap(types.ErrInvalidParams, err.Error())
	}
	return &types.MsgUpdateParamsResponse{}, nil
}
