package keeper

import (
	"context"

	sdkerrors "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
)

// Deploy registers a program image at its derived address. Deployments are
// immutable: an occupied address is an error, never an overwrite.
func (k Keeper) Deploy(ctx context.Context, deployer sdk.AccAddress, deployment types.Deployment) (sdk.AccAddress, error) {
	if deployment.ImageID == "" {
		return nil, sdkerrors.Wrap(types.ErrInvalidImageID, "image id must be set")
	}
	if deployment.Owner != deployer.String() {
		return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "deployer %s is not the declared owner %s", deployer, deployment.Owner)
	}

	addr := types.DeriveDeploymentAddress(deployment.ImageID)
	store := k.getStore(ctx)
	key := DeploymentKey(addr)
	if store.Has(key) {
		return nil, sdkerrors.Wrapf(types.ErrDeploymentExists, "image %s", deployment.ImageID)
	}

	bz, err := k.cdc.MarshalJSON(deployment)
	if err != nil {
		return nil, err
	}
	store.Set(key, bz)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDeploymentCreated,
			sdk.NewAttribute(types.AttributeKeyImageID, deployment.ImageID),
			sdk.NewAttribute(types.AttributeKeyDeployer, deployment.Owner),
		),
	)
	k.metrics.DeploymentsTotal.Inc()

	return addr, nil
}

// GetDeployment loads the deployment record for an image id.
func (k Keeper) GetDeployment(ctx context.Context, imageID string) (types.Deployment, bool) {
	store := k.getStore(ctx)
	bz := store.Get(DeploymentKey(types.DeriveDeploymentAddress(imageID)))
	if bz == nil {
		return types.Deployment{}, false
	}
	var deployment types.Deployment
	k.cdc.MustUnmarshalJSON(bz, &deployment)
	return deployment, true
}

// setDeployment writes a deployment record unconditionally, for genesis
// import.
func (k Keeper) setDeployment(ctx context.Context, deployment types.Deployment) error {
	bz, err := k.cdc.MarshalJSON(deployment)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(DeploymentKey(types.DeriveDeploymentAddress(deployment.ImageID)), bz)
	return nil
}

// PublishInputSet stores an auxiliary input set record at its derived
// address. Like deployments, input sets are immutable once published.
func (k Keeper) PublishInputSet(ctx context.Context, owner sdk.AccAddress, inputSet types.InputSet) (sdk.AccAddress, error) {
	if inputSet.Owner != owner.String() {
		return nil, sdkerrors.Wrapf(types.ErrUnauthorized, "publisher %s is not the declared owner %s", owner, inputSet.Owner)
	}

	addr := types.DeriveInputSetAddress(owner, inputSet.ID)
	store := k.getStore(ctx)
	key := InputSetKey(addr)
	if store.Has(key) {
		return nil, sdkerrors.Wrapf(types.ErrInputSetExists, "input set %s", inputSet.ID)
	}

	bz, err := k.cdc.MarshalJSON(inputSet)
	if err != nil {
		return nil, err
	}
	store.Set(key, bz)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeInputSetPublished,
			sdk.NewAttribute(types.AttributeKeyInputSetID, inputSet.ID),
			sdk.NewAttribute(types.AttributeKeyOwner, inputSet.Owner),
		),
	)

	return addr, nil
}

// GetInputSet loads an input set record by its derived address.
func (k Keeper) GetInputSet(ctx context.Context, addr sdk.AccAddress) (types.InputSet, bool) {
	store := k.getStore(ctx)
	bz := store.Get(InputSetKey(addr))
	if bz == nil {
		return types.InputSet{}, false
	}
	var inputSet types.InputSet
	k.cdc.MustUnmarshalJSON(bz, &inputSet)
	return inputSet, true
}
