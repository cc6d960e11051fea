package types

// Event types for the execution module.
// All event types use lowercase with underscore separator (module_action format)
const (
	EventTypeDeploymentCreated  = "execution_deployment_created"
	EventTypeInputSetPublished  = "execution_input_set_published"
	EventTypeExecutionRequested = "execution_requested"
	EventTypeExecutionClaimed   = "execution_claimed"
	EventTypeExecutionClosed    = "execution_closed"
	EventTypeTipPaid            = "execution_tip_paid"
	EventTypeCallbackDispatched = "execution_callback_dispatched"
	EventTypeCallbackFailed     = "execution_callback_failed"
)

// Event attribute keys for the execution module.
const (
	AttributeKeyExecutionID      = "execution_id"
	AttributeKeyExecutionAddress = "execution_address"
	AttributeKeyRequester        = "requester"
	AttributeKeyImageID          = "image_id"
	AttributeKeyTip              = "tip"
	AttributeKeyMaxBlockHeight   = "max_block_height"
	AttributeKeyClaimer          = "claimer"
	AttributeKeyPreviousHolder   = "previous_holder"
	AttributeKeyStake            = "stake"
	AttributeKeyCommitmentHeight = "commitment_height"
	AttributeKeyClaimOutcome     = "claim_outcome"
	AttributeKeyExitCode         = "exit_code"
	AttributeKeyRefund           = "refund"
	AttributeKeyPayout           = "payout"
	AttributeKeyProver           = "prover"
	AttributeKeyCallbackProgram  = "callback_program"
	AttributeKeyDeployer         = "deployer"
	AttributeKeyInputSetID       = "input_set_id"
	AttributeKeyOwner            = "owner"
)
