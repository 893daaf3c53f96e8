// Package errors provides structured error handling with gRPC status mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Combatant errors
	CodeCombatantEmptyAccountID     Code = "COMBATANT_EMPTY_ACCOUNT_ID"
	CodeCombatantAlreadyRegistered  Code = "COMBATANT_ALREADY_REGISTERED"
	CodeCombatantInvalidStats       Code = "COMBATANT_INVALID_STATS"
	CodeCombatantInActiveEncounter  Code = "COMBATANT_IN_ACTIVE_ENCOUNTER"
	CodeCombatantNotInThisEncounter Code = "COMBATANT_NOT_IN_THIS_ENCOUNTER"

	// Encounter errors
	CodeEncounterEmptyID       Code = "ENCOUNTER_EMPTY_ID"
	CodeEncounterSameCombatant Code = "ENCOUNTER_SAME_COMBATANT"
	CodeEncounterFinished      Code = "ENCOUNTER_FINISHED"
	CodeEncounterInvalidTurns  Code = "ENCOUNTER_INVALID_MAX_TURNS"

	// Equipment errors
	CodeEquipmentNotOwned      Code = "EQUIPMENT_NOT_OWNED"
	CodeEquipmentAlreadyFrozen Code = "EQUIPMENT_ALREADY_FROZEN"
	CodeEquipmentSlotFull      Code = "EQUIPMENT_SLOT_FULL"
	CodeEquipmentNotEquipped   Code = "EQUIPMENT_NOT_EQUIPPED"
	CodeEquipmentNoMetadata    Code = "EQUIPMENT_NO_METADATA"

	// Token errors
	CodeTokenDecodeFailed Code = "TOKEN_DECODE_FAILED"

	// Currency errors
	CodeCurrencyInsufficient Code = "CURRENCY_INSUFFICIENT"

	// Config errors
	CodeConfigNoPermission Code = "CONFIG_NO_PERMISSION"
	CodeConfigInvalidValue Code = "CONFIG_INVALID_VALUE"

	// Randomness errors
	CodeEntropyExhausted Code = "ENTROPY_EXHAUSTED"

	// Ledger errors
	CodeAssetCommitFailed Code = "ASSET_COMMIT_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCombatantEmptyAccountID,
		CodeCombatantInvalidStats,
		CodeEncounterEmptyID,
		CodeEncounterSameCombatant,
		CodeEncounterInvalidTurns,
		CodeTokenDecodeFailed,
		CodeConfigInvalidValue:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCombatantAlreadyRegistered,
		CodeCombatantInActiveEncounter,
		CodeCombatantNotInThisEncounter,
		CodeEncounterFinished,
		CodeEquipmentNotOwned,
		CodeEquipmentAlreadyFrozen,
		CodeEquipmentSlotFull,
		CodeEquipmentNotEquipped,
		CodeEquipmentNoMetadata,
		CodeCurrencyInsufficient:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks authority
	case CodeConfigNoPermission:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Aborted - the operation rolled back and is safe to retry
	case CodeAssetCommitFailed:
		return codes.Aborted

	// ResourceExhausted - the entropy budget for this execution ran out
	case CodeEntropyExhausted:
		return codes.ResourceExhausted

	default:
		return codes.Internal
	}
}

// Retryable reports whether the operation that produced this code rolled back
// cleanly and may be retried with the same input.
func (c Code) Retryable() bool {
	return c == CodeAssetCommitFailed
}
