package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// InputType classifies a request input descriptor.
type InputType uint8

const (
	// InputTypePublicData is inline data carried in the request itself.
	InputTypePublicData InputType = iota
	// InputTypePublicURL is a reference the prover fetches off-chain; it
	// resolves to a single input like inline data.
	InputTypePublicURL
	// InputTypeInputSet is an indirect reference to a published input set
	// record. Its payload is a single byte: the index of the referenced
	// record in the caller-supplied auxiliary account list, offset by
	// InputSetAccountBase.
	InputTypeInputSet
	// InputTypePrivateLocal is prover-local private data. It cannot be
	// validated on-chain and is rejected at admission.
	InputTypePrivateLocal
)

// InputSetAccountBase is the index of the first auxiliary account in the
// admission call's account list. Input-set references are encoded relative to
// the full list, so the base is subtracted before indexing the auxiliary
// slice.
const InputSetAccountBase = 6

// Input is a typed input descriptor of an execution request.
type Input struct {
	Type InputType `json:"type"`
	Data []byte    `json:"data,omitempty"`
}

// InputSpec is a deployment-declared input slot. Only its presence is
// significant at admission; the type guides off-chain tooling.
type InputSpec struct {
	Type InputType `json:"type"`
}

// ResolveInputCount computes the effective number of inputs a request
// supplies: inline inputs count as one each, and every input-set reference
// contributes the inline length of the referenced auxiliary record.
//
// Descriptors typed PrivateLocal fail resolution outright, and a reference
// whose index does not land in aux yields a typed out-of-range error instead
// of an unchecked lookup.
func ResolveInputCount(inputs []Input, aux []InputSet) (int, error) {
	count := 0
	for i, in := range inputs {
		switch in.Type {
		case InputTypeInputSet:
			if len(in.Data) != 1 {
				return 0, sdkerrors.Wrapf(ErrInvalidInputs, "input %d: input-set reference must be a single account index byte", i)
			}
			idx := int(in.Data[0]) - InputSetAccountBase
			if idx < 0 || idx >= len(aux) {
				return 0, sdkerrors.Wrapf(ErrInputIndexOutOfRange, "input %d: account index %d resolves to auxiliary slot %d of %d", i, in.Data[0], idx, len(aux))
			}
			count += len(aux[idx].Inputs)
		case InputTypePrivateLocal:
			return 0, sdkerrors.Wrapf(ErrInvalidInputType, "input %d: private-local inputs are not accepted at admission", i)
		default:
			count++
		}
	}
	return count, nil
}
