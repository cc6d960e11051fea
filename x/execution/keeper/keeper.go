package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provex-labs/provex/x/execution/types"
	"github.com/provex-labs/provex/x/execution/verifier"
)

// Store prefixes. Request and claim records are keyed by their derived
// addresses, so record lookups and occupancy checks are single store reads.
var (
	DeploymentKeyPrefix = []byte{0x01}
	InputSetKeyPrefix   = []byte{0x02}
	RequestKeyPrefix    = []byte{0x03}
	ClaimKeyPrefix      = []byte{0x04}
	ParamsKey           = []byte{0x05}
)

// DeploymentKey returns the store key of a deployment record.
func DeploymentKey(addr sdk.AccAddress) []byte {
	return append(DeploymentKeyPrefix, addr.Bytes()...)
}

// InputSetKey returns the store key of an input set record.
func InputSetKey(addr sdk.AccAddress) []byte {
	return append(InputSetKeyPrefix, addr.Bytes()...)
}

// RequestKey returns the store key of an execution request record.
func RequestKey(addr sdk.AccAddress) []byte {
	return append(RequestKeyPrefix, addr.Bytes()...)
}

// ClaimKey returns the store key of a claim record.
func ClaimKey(addr sdk.AccAddress) []byte {
	return append(ClaimKeyPrefix, addr.Bytes()...)
}

// Keeper of the execution store.
type Keeper struct {
	storeKey        storetypes.StoreKey
	cdc             *codec.LegacyAmino
	bankKeeper      types.BankKeeper
	accountKeeper   types.AccountKeeper
	callbackInvoker types.CallbackInvoker
	verifiers       *verifier.Registry
	authority       string
	metrics         *Metrics
}

// NewKeeper creates a new execution Keeper instance. callbackInvoker may be
// nil on hosts without a sub-call capability; settlement then records the
// callback as failed and proceeds.
func NewKeeper(
	cdc *codec.LegacyAmino,
	key storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	accountKeeper types.AccountKeeper,
	callbackInvoker types.CallbackInvoker,
	verifiers *verifier.Registry,
	authority string,
) *Keeper {
	if verifiers == nil {
		verifiers = verifier.NewRegistry()
	}
	return &Keeper{
		storeKey:        key,
		cdc:             cdc,
		bankKeeper:      bankKeeper,
		accountKeeper:   accountKeeper,
		callbackInvoker: callbackInvoker,
		verifiers:       verifiers,
		authority:       authority,
		metrics:         NewMetrics(),
	}
}

// GetAuthority returns the address allowed to update module params.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Verifiers returns the proof verifier registry.
func (k Keeper) Verifiers() *verifier.Registry {
	return k.verifiers
}

// Logger returns a module-tagged logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// getStore returns the KVStore for the execution module.
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// GetParams returns the current module parameters, falling back to defaults
// when none have been stored.
func (k Keeper) GetParams(ctx context.Context) types.Params {
	store := k.getStore(ctx)
	bz := store.Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}
	var params types.Params
	k.cdc.MustUnmarshalJSON(bz, &params)
	return params
}

// SetParams stores the module parameters.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	store := k.getStore(ctx)
	bz, err := k.cdc.MarshalJSON(params)
	if err != nil {
		return err
	}
	store.Set(ParamsKey, bz)
	return nil
}
