package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterLegacyAminoCodec registers the execution module's concrete message
// and state types on the provided LegacyAmino codec. The same codec also
// serializes the module's state records, so every persisted type is listed
// here.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgDeploy{}, "provex/execution/MsgDeploy", nil)
	cdc.RegisterConcrete(&MsgPublishInputSet{}, "provex/execution/MsgPublishInputSet", nil)
	cdc.RegisterConcrete(&MsgRequestExecution{}, "provex/execution/MsgRequestExecution", nil)
	cdc.RegisterConcrete(&MsgClaim{}, "provex/execution/MsgClaim", nil)
	cdc.RegisterConcrete(&MsgSubmitStatus{}, "provex/execution/MsgSubmitStatus", nil)
	cdc.RegisterConcrete(&MsgUpdateParams{}, "provex/execution/MsgUpdateParams", nil)
}

// RegisterInterfaces registers the execution module message implementations
// with the interface registry.
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgDeploy{},
		&MsgPublishInputSet{},
		&MsgRequestExecution{},
		&MsgClaim{},
		&MsgSubmitStatus{},
		&MsgUpdateParams{},
	)
}

var amino = codec.NewLegacyAmino()

func init() {
	RegisterLegacyAminoCodec(amino)
}

// ModuleCdc returns the module's amino codec, used for both message signing
// and state record serialization.
func ModuleCdc() *codec.LegacyAmino {
	return amino
}
