package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// Execution module sentinel errors.
//
// Verification outcomes (proving failed, verify failed, expired) are not
// errors: they are successful terminal transitions that close the request
// with an exit code. Only authorization, malformed-input, protocol-state and
// economic failures abort a call.
var (
	// Malformed payloads
	ErrInvalidRequest      = sdkerrors.Register(ModuleName, 2, "invalid execution request")
	ErrInvalidExecutionID  = sdkerrors.Register(ModuleName, 3, "invalid execution id")
	ErrInvalidImageID      = sdkerrors.Register(ModuleName, 4, "invalid image id")
	ErrMaxHeightRequired   = sdkerrors.Register(ModuleName, 5, "max block height must be nonzero")
	ErrInputDigestRequired = sdkerrors.Register(ModuleName, 6, "input digest required when input hash verification is set")

	// Input resolution
	ErrInvalidInputs        = sdkerrors.Register(ModuleName, 10, "invalid inputs")
	ErrInvalidInputType     = sdkerrors.Register(ModuleName, 11, "invalid input type")
	ErrInputIndexOutOfRange = sdkerrors.Register(ModuleName, 12, "input set reference out of range")
	ErrInputSetNotFound     = sdkerrors.Register(ModuleName, 13, "input set not found")

	// Deployment registry
	ErrDeploymentNotFound = sdkerrors.Register(ModuleName, 20, "deployment not found")
	ErrDeploymentExists   = sdkerrors.Register(ModuleName, 21, "deployment already exists")
	ErrInputSetExists     = sdkerrors.Register(ModuleName, 22, "input set already exists")

	// Request lifecycle
	ErrRequestExists   = sdkerrors.Register(ModuleName, 30, "execution request already exists")
	ErrRequestNotFound = sdkerrors.Register(ModuleName, 31, "execution request not found")

	// Claim arbitration
	ErrInsufficientStake = sdkerrors.Register(ModuleName, 40, "insufficient balance to back a claim")
	ErrActiveClaimExists = sdkerrors.Register(ModuleName, 41, "active claim exists")
	ErrInvalidClaim      = sdkerrors.Register(ModuleName, 42, "invalid claim")

	// Settlement
	ErrInputDigestMismatch     = sdkerrors.Register(ModuleName, 50, "input digest does not match digest recorded at admission")
	ErrInvalidCallbackAccounts = sdkerrors.Register(ModuleName, 51, "invalid callback accounts")

	// Authorization
	ErrUnauthorized = sdkerrors.Register(ModuleName, 60, "unauthorized")

	// Params
	ErrInvalidParams = sdkerrors.Register(ModuleName, 70, "invalid params")
)
