package types

import (
	"crypto/sha256"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "execution"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey is the message route for execution
	RouterKey = ModuleName
)

// Derivation domain tags. Each record family lives at an address derived from
// a distinct tag so the families can never collide.
const (
	executionSeed  = "execution"
	claimSeed      = "claim"
	deploymentSeed = "deployment"
	inputSetSeed   = "input-set"
)

// DeriveExecutionAddress returns the deterministic address of the execution
// request record for the given (requester, execution id) pair. The request's
// tip is escrowed at this address, so the address doubles as the request's
// balance-holding account.
func DeriveExecutionAddress(requester sdk.AccAddress, executionID string) sdk.AccAddress {
	return address.Module(ModuleName, []byte(executionSeed), requester.Bytes(), []byte(executionID))
}

// DeriveClaimAddress returns the deterministic address of the claim record
// belonging to the execution record at execAddr. The current holder's stake is
// escrowed at this address.
func DeriveClaimAddress(execAddr sdk.AccAddress) sdk.AccAddress {
	return address.Module(ModuleName, []byte(claimSeed), execAddr.Bytes())
}

// DeriveDeploymentAddress returns the deterministic address of the deployment
// record for an image. The image identifier is hashed first so arbitrarily
// long ids produce fixed-size seeds.
func DeriveDeploymentAddress(imageID string) sdk.AccAddress {
	h := sha256.Sum256([]byte(imageID))
	return address.Module(ModuleName, []byte(deploymentSeed), h[:])
}

// DeriveInputSetAddress returns the deterministic address of an input set
// record published by owner under the given id.
func DeriveInputSetAddress(owner sdk.AccAddress, inputSetID string) sdk.AccAddress {
	return address.Module(ModuleName, []byte(inputSetSeed), owner.Bytes(), []byte(inputSetID))
}
