package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// ProofSize is the exact byte length a submitted proof blob must have. Reports
// carrying a proof of any other size are treated as proving failures.
const ProofSize = 256

// ProverVersionV1_0_1 selects the risc0 v1.0.1 groth16 verifier profile.
const ProverVersionV1_0_1 = "risc0:v1.0.1"

// ExitCode is the terminal outcome recorded when an execution request is
// closed.
type ExitCode uint8

const (
	ExitCodeSuccess ExitCode = iota
	ExitCodeVerifyError
	ExitCodeProvingError
	ExitCodeExpired
)

func (c ExitCode) String() string {
	switch c {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeVerifyError:
		return "verify_error"
	case ExitCodeProvingError:
		return "proving_error"
	case ExitCodeExpired:
		return "expired"
	default:
		return fmt.Sprintf("exit_code(%d)", uint8(c))
	}
}

// ClaimOutcome is the tagged result of a claim attempt. Rejections surface as
// errors from the keeper, so a rejected attempt never reaches state; the
// outcome is still enumerated for event and metric labels.
type ClaimOutcome uint8

const (
	ClaimOutcomeCreated ClaimOutcome = iota
	ClaimOutcomeReclaimed
	ClaimOutcomeExpired
	ClaimOutcomeRejected
)

func (o ClaimOutcome) String() string {
	switch o {
	case ClaimOutcomeCreated:
		return "created"
	case ClaimOutcomeReclaimed:
		return "reclaimed"
	case ClaimOutcomeExpired:
		return "expired"
	case ClaimOutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("claim_outcome(%d)", uint8(o))
	}
}

// AccountMeta names an account a callback instruction touches and whether the
// callee may write to it.
type AccountMeta struct {
	Address  string `json:"address"`
	Writable bool   `json:"writable"`
}

// CallbackSpec describes the optional notification sub-call dispatched after a
// successful settlement. ExtraAccounts pins the exact account list (addresses
// and per-entry writability) the caller must supply at settlement time.
type CallbackSpec struct {
	ProgramAddress    string        `json:"program_address"`
	InstructionPrefix []byte        `json:"instruction_prefix"`
	ExtraAccounts     []AccountMeta `json:"extra_accounts,omitempty"`
	ForwardOutput     bool          `json:"forward_output"`
}

// ExecutionRequest is the persistent record created at admission. It is
// immutable until settlement closes it; the escrowed tip is the balance of
// the record's derived address.
type ExecutionRequest struct {
	ExecutionID     string        `json:"execution_id"`
	Requester       string        `json:"requester"`
	ImageID         string        `json:"image_id"`
	MaxBlockHeight  uint64        `json:"max_block_height"`
	Tip             math.Int      `json:"tip"`
	Inputs          []Input       `json:"inputs,omitempty"`
	VerifyInputHash bool          `json:"verify_input_hash"`
	InputDigest     []byte        `json:"input_digest,omitempty"`
	Callback        *CallbackSpec `json:"callback,omitempty"`
	ProverVersion   string        `json:"prover_version"`
}

// HasCallback reports whether settlement must attempt the notification
// sub-call. Both a target program and an instruction prefix are required, as
// the prefix is the callback's opcode.
func (r ExecutionRequest) HasCallback() bool {
	return r.Callback != nil && r.Callback.ProgramAddress != "" && len(r.Callback.InstructionPrefix) > 0
}

// Claim is the stake-backed exclusive right to fulfill an execution request.
// At most one live claim exists per request, stored at the request-derived
// claim address which also escrows the holder's stake. BlockCommitment is the
// height the holder asserted when claiming; CommitmentHeight is the actual
// block height the claim was committed at and is what the contest window runs
// from.
type Claim struct {
	ExecutionAddress string   `json:"execution_address"`
	Holder           string   `json:"holder"`
	BlockCommitment  uint64   `json:"block_commitment"`
	CommitmentHeight uint64   `json:"commitment_height"`
	Stake            math.Int `json:"stake"`
}

// Contestable reports whether the holder's exclusivity window has elapsed at
// the given height.
func (c Claim) Contestable(height uint64) bool {
	return height > c.CommitmentHeight
}

// Deployment is the one-time immutable registration of a program image. Its
// declared inputs fix the input count every execution request against the
// image must satisfy.
type Deployment struct {
	ImageID    string      `json:"image_id"`
	Owner      string      `json:"owner"`
	ProgramURL string      `json:"program_url"`
	Size       uint64      `json:"size"`
	Inputs     []InputSpec `json:"inputs,omitempty"`
}

// RequiredInputCount returns the number of resolved inputs a request against
// this deployment must carry. A deployment that declares no inputs expects
// exactly one.
func (d Deployment) RequiredInputCount() int {
	if len(d.Inputs) == 0 {
		return 1
	}
	return len(d.Inputs)
}

// InputSet is an auxiliary record holding pre-published inputs that a request
// can reference indirectly instead of inlining them.
type InputSet struct {
	ID     string  `json:"id"`
	Owner  string  `json:"owner"`
	Inputs []Input `json:"inputs"`
}

// StatusReport is the ephemeral payload submitted at settlement time. It is
// consumed once and never persisted.
type StatusReport struct {
	ExecutionID      string `json:"execution_id"`
	Proof            []byte `json:"proof"`
	ExecutionDigest  []byte `json:"execution_digest"`
	InputDigest      []byte `json:"input_digest"`
	AssumptionDigest []byte `json:"assumption_digest"`
	CommittedOutputs []byte `json:"committed_outputs"`
	ExitCodeSystem   uint32 `json:"exit_code_system"`
	ExitCodeUser     uint32 `json:"exit_code_user"`
}

// Complete reports whether every field the verifier needs is present. An
// incomplete report settles the request as a proving failure rather than
// erroring back to the caller.
func (s StatusReport) Complete() bool {
	return len(s.Proof) == ProofSize &&
		len(s.ExecutionDigest) > 0 &&
		len(s.InputDigest) > 0 &&
		len(s.AssumptionDigest) > 0 &&
		len(s.CommittedOutputs) > 0
}
