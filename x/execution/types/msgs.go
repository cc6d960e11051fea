package types

import (
	"fmt"

	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message type names
const (
	TypeMsgDeploy           = "deploy"
	TypeMsgPublishInputSet  = "publish_input_set"
	TypeMsgRequestExecution = "request_execution"
	TypeMsgClaim            = "claim"
	TypeMsgSubmitStatus     = "submit_status"
	TypeMsgUpdateParams     = "update_params"
)

var (
	_ sdk.Msg = &MsgDeploy{}
	_ sdk.Msg = &MsgPublishInputSet{}
	_ sdk.Msg = &MsgRequestExecution{}
	_ sdk.Msg = &MsgClaim{}
	_ sdk.Msg = &MsgSubmitStatus{}
	_ sdk.Msg = &MsgUpdateParams{}
)

// MsgDeploy registers a program image. The record is immutable: a second
// deploy of the same image id fails.
type MsgDeploy struct {
	Deployer   string      `json:"deployer"`
	ImageID    string      `json:"image_id"`
	ProgramURL string      `json:"program_url"`
	Size       uint64      `json:"size"`
	Inputs     []InputSpec `json:"inputs,omitempty"`
}

type MsgDeployResponse struct {
	DeploymentAddress string `json:"deployment_address"`
}

// MsgPublishInputSet publishes an auxiliary input set record that requests
// can reference indirectly.
type MsgPublishInputSet struct {
	Owner      string  `json:"owner"`
	InputSetID string  `json:"input_set_id"`
	Inputs     []Input `json:"inputs"`
}

type MsgPublishInputSetResponse struct {
	InputSetAddress string `json:"input_set_address"`
}

// MsgRequestExecution admits a new execution request. The requester signs for
// the request identity; the payer signs for and funds the tip escrow.
// InputSets lists the addresses of auxiliary input set records, indexed by
// the request's input-set descriptors.
type MsgRequestExecution struct {
	Requester       string        `json:"requester"`
	Payer           string        `json:"payer"`
	ExecutionID     string        `json:"execution_id"`
	ImageID         string        `json:"image_id"`
	MaxBlockHeight  uint64        `json:"max_block_height"`
	Tip             math.Int      `json:"tip"`
	Inputs          []Input       `json:"inputs,omitempty"`
	VerifyInputHash bool          `json:"verify_input_hash"`
	InputDigest     []byte        `json:"input_digest,omitempty"`
	Callback        *CallbackSpec `json:"callback,omitempty"`
	ProverVersion   string        `json:"prover_version"`
	InputSets       []string      `json:"input_sets,omitempty"`
}

type MsgRequestExecutionResponse struct {
	ExecutionAddress string `json:"execution_address"`
}

// MsgClaim takes or contests the exclusive right to work an execution
// request. BlockCommitment carries the height the caller believes is current;
// the claim itself is committed at the actual block height.
type MsgClaim struct {
	Requester       string `json:"requester"`
	ExecutionID     string `json:"execution_id"`
	Claimer         string `json:"claimer"`
	Payer           string `json:"payer"`
	BlockCommitment uint64 `json:"block_commitment"`
}

type MsgClaimResponse struct {
	Outcome string `json:"outcome"`
}

// MsgSubmitStatus submits a status report for settlement. ExtraAccounts must
// mirror the request's stored callback account list exactly when a callback
// is configured.
type MsgSubmitStatus struct {
	Prover           string        `json:"prover"`
	Requester        string        `json:"requester"`
	ExecutionID      string        `json:"execution_id"`
	Proof            []byte        `json:"proof,omitempty"`
	ExecutionDigest  []byte        `json:"execution_digest,omitempty"`
	InputDigest      []byte        `json:"input_digest,omitempty"`
	AssumptionDigest []byte        `json:"assumption_digest,omitempty"`
	CommittedOutputs []byte        `json:"committed_outputs,omitempty"`
	ExitCodeSystem   uint32        `json:"exit_code_system"`
	ExitCodeUser     uint32        `json:"exit_code_user"`
	ExtraAccounts    []AccountMeta `json:"extra_accounts,omitempty"`
}

type MsgSubmitStatusResponse struct {
	ExitCode string `json:"exit_code"`
}

// MsgUpdateParams replaces the module parameters. Only the module authority
// may execute it.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

type MsgUpdateParamsResponse struct{}

// Report assembles the ephemeral status report carried by the message.
func (msg *MsgSubmitStatus) Report() StatusReport {
	return StatusReport{
		ExecutionID:      msg.ExecutionID,
		Proof:            msg.Proof,
		ExecutionDigest:  msg.ExecutionDigest,
		InputDigest:      msg.InputDigest,
		AssumptionDigest: msg.AssumptionDigest,
		CommittedOutputs: msg.CommittedOutputs,
		ExitCodeSystem:   msg.ExitCodeSystem,
		ExitCodeUser:     msg.ExitCodeUser,
	}
}

// GetSigners implementations - these assume addresses are valid (validated in ValidateBasic)

func (msg *MsgDeploy) GetSigners() []sdk.AccAddress {
	deployer, _ := sdk.AccAddressFromBech32(msg.Deployer)
	return []sdk.AccAddress{deployer}
}

func (msg *MsgPublishInputSet) GetSigners() []sdk.AccAddress {
	owner, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{owner}
}

func (msg *MsgRequestExecution) GetSigners() []sdk.AccAddress {
	requester, _ := sdk.AccAddressFromBech32(msg.Requester)
	if msg.Payer != "" && msg.Payer != msg.Requester {
		payer, _ := sdk.AccAddressFromBech32(msg.Payer)
		return []sdk.AccAddress{requester, payer}
	}
	return []sdk.AccAddress{requester}
}

func (msg *MsgClaim) GetSigners() []sdk.AccAddress {
	claimer, _ := sdk.AccAddressFromBech32(msg.Claimer)
	if msg.Payer != "" && msg.Payer != msg.Claimer {
		payer, _ := sdk.AccAddressFromBech32(msg.Payer)
		return []sdk.AccAddress{claimer, payer}
	}
	return []sdk.AccAddress{claimer}
}

func (msg *MsgSubmitStatus) GetSigners() []sdk.AccAddress {
	prover, _ := sdk.AccAddressFromBech32(msg.Prover)
	return []sdk.AccAddress{prover}
}

func (msg *MsgUpdateParams) GetSigners() []sdk.AccAddress {
	authority, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{authority}
}

// ValidateBasic performs stateless validation of MsgDeploy.
func (msg *MsgDeploy) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Deployer); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid deployer address: %s", err)
	}
	if msg.ImageID == "" {
		return sdkerrors.Wrap(ErrInvalidImageID, "image id must be set")
	}
	if msg.ProgramURL == "" {
		return sdkerrors.Wrap(ErrInvalidRequest, "program url must be set")
	}
	return nil
}

// ValidateBasic performs stateless validation of MsgPublishInputSet.
func (msg *MsgPublishInputSet) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid owner address: %s", err)
	}
	if msg.InputSetID == "" {
		return sdkerrors.Wrap(ErrInvalidRequest, "input set id must be set")
	}
	if len(msg.Inputs) == 0 {
		return sdkerrors.Wrap(ErrInvalidInputs, "input set must declare at least one input")
	}
	for i, in := range msg.Inputs {
		if in.Type == InputTypeInputSet || in.Type == InputTypePrivateLocal {
			return sdkerrors.Wrapf(ErrInvalidInputType, "input %d: input sets hold inline inputs only", i)
		}
	}
	return nil
}

// ValidateBasic performs stateless validation of MsgRequestExecution.
func (msg *MsgRequestExecution) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Requester); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid requester address: %s", err)
	}
	if msg.Payer != "" {
		if _, err := sdk.AccAddressFromBech32(msg.Payer); err != nil {
			return sdkerrors.Wrapf(ErrUnauthorized, "invalid payer address: %s", err)
		}
	}
	if msg.ExecutionID == "" {
		return sdkerrors.Wrap(ErrInvalidExecutionID, "execution id must be set")
	}
	if msg.ImageID == "" {
		return sdkerrors.Wrap(ErrInvalidImageID, "image id must be set")
	}
	if msg.MaxBlockHeight == 0 {
		return ErrMaxHeightRequired
	}
	if msg.Tip.IsNil() || !msg.Tip.IsPositive() {
		return sdkerrors.Wrap(ErrInvalidRequest, "tip must be positive")
	}
	if msg.VerifyInputHash && len(msg.InputDigest) == 0 {
		return ErrInputDigestRequired
	}
	if msg.Callback != nil {
		if _, err := sdk.AccAddressFromBech32(msg.Callback.ProgramAddress); err != nil {
			return sdkerrors.Wrapf(ErrInvalidRequest, "invalid callback program address: %s", err)
		}
		for i, acc := range msg.Callback.ExtraAccounts {
			if _, err := sdk.AccAddressFromBech32(acc.Address); err != nil {
				return sdkerrors.Wrapf(ErrInvalidRequest, "invalid callback account %d: %s", i, err)
			}
		}
	}
	for i, addr := range msg.InputSets {
		if _, err := sdk.AccAddressFromBech32(addr); err != nil {
			return sdkerrors.Wrapf(ErrInvalidRequest, "invalid input set address %d: %s", i, err)
		}
	}
	return nil
}

// ValidateBasic performs stateless validation of MsgClaim.
func (msg *MsgClaim) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Requester); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid requester address: %s", err)
	}
	if _, err := sdk.AccAddressFromBech32(msg.Claimer); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid claimer address: %s", err)
	}
	if msg.Payer != "" {
		if _, err := sdk.AccAddressFromBech32(msg.Payer); err != nil {
			return sdkerrors.Wrapf(ErrUnauthorized, "invalid payer address: %s", err)
		}
	}
	if msg.ExecutionID == "" {
		return sdkerrors.Wrap(ErrInvalidExecutionID, "execution id must be set")
	}
	return nil
}

// ValidateBasic performs stateless validation of MsgSubmitStatus. Report
// completeness is deliberately not validated here: an incomplete report is a
// valid message that settles the request as a proving failure.
func (msg *MsgSubmitStatus) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Prover); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid prover address: %s", err)
	}
	if _, err := sdk.AccAddressFromBech32(msg.Requester); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid requester address: %s", err)
	}
	if msg.ExecutionID == "" {
		return sdkerrors.Wrap(ErrInvalidExecutionID, "execution id must be set")
	}
	for i, acc := range msg.ExtraAccounts {
		if _, err := sdk.AccAddressFromBech32(acc.Address); err != nil {
			return sdkerrors.Wrapf(ErrInvalidRequest, "invalid extra account %d: %s", i, err)
		}
	}
	return nil
}

// ValidateBasic performs stateless validation of MsgUpdateParams.
func (msg *MsgUpdateParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return sdkerrors.Wrapf(ErrUnauthorized, "invalid authority address: %s", err)
	}
	if err := msg.Params.Validate(); err != nil {
		return sdkerrors.Wrap(ErrInvalidParams, err.Error())
	}
	return nil
}

// proto.Message shims. The module's message types are hand-written; these
// satisfy the sdk.Msg contract without generated code.

func (msg *MsgDeploy) Reset()         { *msg = MsgDeploy{} }
func (msg *MsgDeploy) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgDeploy) ProtoMessage()      {}

func (msg *MsgDeployResponse) Reset()         { *msg = MsgDeployResponse{} }
func (msg *MsgDeployResponse) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgDeployResponse) ProtoMessage()      {}

func (msg *MsgPublishInputSet) Reset()         { *msg = MsgPublishInputSet{} }
func (msg *MsgPublishInputSet) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgPublishInputSet) ProtoMessage()      {}

func (msg *MsgPublishInputSetResponse) Reset()         { *msg = MsgPublishInputSetResponse{} }
func (msg *MsgPublishInputSetResponse) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgPublishInputSetResponse) ProtoMessage()      {}

func (msg *MsgRequestExecution) Reset()         { *msg = MsgRequestExecution{} }
func (msg *MsgRequestExecution) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgRequestExecution) ProtoMessage()      {}

func (msg *MsgRequestExecutionResponse) Reset()         { *msg = MsgRequestExecutionResponse{} }
func (msg *MsgRequestExecutionResponse) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgRequestExecutionResponse) ProtoMessage()      {}

func (msg *MsgClaim) Reset()         { *msg = MsgClaim{} }
func (msg *MsgClaim) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgClaim) ProtoMessage()      {}

func (msg *MsgClaimResponse) Reset()         { *msg = MsgClaimResponse{} }
func (msg *MsgClaimResponse) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgClaimResponse) ProtoMessage()      {}

func (msg *MsgSubmitStatus) Reset()         { *msg = MsgSubmitStatus{} }
func (msg *MsgSubmitStatus) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgSubmitStatus) ProtoMessage()      {}

func (msg *MsgSubmitStatusResponse) Reset()         { *msg = MsgSubmitStatusResponse{} }
func (msg *MsgSubmitStatusResponse) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgSubmitStatusResponse) ProtoMessage()      {}

func (msg *MsgUpdateParams) Reset()         { *msg = MsgUpdateParams{} }
func (msg *MsgUpdateParams) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgUpdateParams) ProtoMessage()      {}

func (msg *MsgUpdateParamsResponse) Reset()         { *msg = MsgUpdateParamsResponse{} }
func (msg *MsgUpdateParamsResponse) String() string { return fmt.Sprintf("%#v", msg) }
func (*MsgUpdateParamsResponse) ProtoMessage()      {}

// XXX_MessageName gives each hand-written type a stable gogoproto name, so
// interface-registry registration and Any packing resolve to distinct
// "/provex.execution.*" type URLs instead of an empty name.

func (*MsgDeploy) XXX_MessageName() string {
	return "provex.execution.MsgDeploy"
}

func (*MsgDeployResponse) XXX_MessageName() string {
	return "provex.execution.MsgDeployResponse"
}

func (*MsgPublishInputSet) XXX_MessageName() string {
	return "provex.execution.MsgPublishInputSet"
}

func (*MsgPublishInputSetResponse) XXX_MessageName() string {
	return "provex.execution.MsgPublishInputSetResponse"
}

func (*MsgRequestExecution) XXX_MessageName() string {
	return "provex.execution.MsgRequestExecution"
}

func (*MsgRequestExecutionResponse) XXX_MessageName() string {
	return "provex.execution.MsgRequestExecutionResponse"
}

func (*MsgClaim) XXX_MessageName() string {
	return "provex.execution.MsgClaim"
}

func (*MsgClaimResponse) XXX_MessageName() string {
	return "provex.execution.MsgClaimResponse"
}

func (*MsgSubmitStatus) XXX_MessageName() string {
	return "provex.execution.MsgSubmitStatus"
}

func (*MsgSubmitStatusResponse) XXX_MessageName() string {
	return "provex.execution.MsgSubmitStatusResponse"
}

func (*MsgUpdateParams) XXX_MessageName() string {
	return "provex.execution.MsgUpdateParams"
}

func (*MsgUpdateParamsResponse) XXX_MessageName() string {
	return "provex.execution.MsgUpdateParamsResponse"
}
