package execution

import (
	"encoding/json"
	"fmt"

	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"

	"github.com/provex-labs/provex/x/execution/client/cli"
	"github.com/provex-labs/provex/x/execution/keeper"
	executiontypes "github.com/provex-labs/provex/x/execution/types"
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ module.HasGenesis     = AppModule{}
)

// AppModuleBasic defines the basic application module for the execution
// module.
type AppModuleBasic struct{}

// Name returns the execution module's name.
func (AppModuleBasic) Name() string {
	return executiontypes.ModuleName
}

// RegisterLegacyAminoCodec registers the execution module's types on the
// LegacyAmino codec.
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	executiontypes.RegisterLegacyAminoCodec(cdc)
}

// RegisterInterfaces registers the execution module's interface types.
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	executiontypes.RegisterInterfaces(registry)
}

// DefaultGenesis returns the execution module's default genesis state.
func (AppModuleBasic) DefaultGenesis(codec.JSONCodec) json.RawMessage {
	bz, err := executiontypes.ModuleCdc().MarshalJSON(executiontypes.DefaultGenesis())
	if err != nil {
		panic(err)
	}
	return bz
}

// ValidateGenesis validates the execution module's genesis state.
func (AppModuleBasic) ValidateGenesis(_ codec.JSONCodec, _ client.TxEncodingConfig, bz json.RawMessage) error {
	var state executiontypes.GenesisState
	if err := executiontypes.ModuleCdc().UnmarshalJSON(bz, &state); err != nil {
		return fmt.Errorf("failed to unmarshal %s genesis state: %w", executiontypes.ModuleName, err)
	}
	return state.Validate()
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the
// execution module. The module exposes no query services over the gateway.
func (AppModuleBasic) RegisterGRPCGatewayRoutes(_ client.Context, _ *runtime.ServeMux) {}

// GetTxCmd returns the root tx command for the execution module.
func (AppModuleBasic) GetTxCmd() *cobra.Command {
	return cli.GetTxCmd()
}

// AppModule implements an application module for the execution module.
// Message dispatch is wired by the host application through
// keeper.NewMsgServerImpl; the module carries no generated service
// descriptors.
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object.
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{keeper: k}
}

// IsAppModule implements the appmodule.AppModule interface.
func (am AppModule) IsAppModule() {}

// IsOnePerModuleType implements the appmodule.AppModule interface.
func (am AppModule) IsOnePerModuleType() {}

// ConsensusVersion returns the current consensus version of the module.
func (AppModule) ConsensusVersion() uint64 { return 1 }

// InitGenesis initializes the execution module's state from a genesis state.
func (am AppModule) InitGenesis(ctx sdk.Context, _ codec.JSONCodec, bz json.RawMessage) {
	var state executiontypes.GenesisState
	executiontypes.ModuleCdc().MustUnmarshalJSON(bz, &state)
	if err := am.keeper.InitGenesis(ctx, state); err != nil {
		panic(err)
	}
}

// ExportGenesis exports the execution module's state as raw JSON.
func (am AppModule) ExportGenesis(ctx sdk.Context, _ codec.JSONCodec) json.RawMessage {
	state := am.keeper.ExportGenesis(ctx)
	bz, err := executiontypes.ModuleCdc().MarshalJSON(state)
	if err != nil {
		panic(err)
	}
	return bz
}
