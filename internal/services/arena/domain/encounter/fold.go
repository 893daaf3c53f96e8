package encounter

// Fold replays turn records over an encounter's initial state. It applies
// only the damage each record names, so the result is independent of the
// entropy schedule. Auditors compare a folded encounter against the stored
// one to detect tampered history.
func Fold(initial Encounter, records []TurnRecord) Encounter {
	enc := initial
	enc.Turn = 0
	enc.State = StateCreated
	enc.Outcome = OutcomeInProgress
	enc.History = nil

	for _, record := range records {
		switch record.DefenderAccount {
		case enc.A.AccountID:
			enc.A = enc.A.ApplyDamage(record.Damage)
		case enc.B.AccountID:
			enc.B = enc.B.ApplyDamage(record.Damage)
		}
		enc.Turn = record.Turn
		enc.Cursor = record.CursorAfter
		enc.UpdatedAt = record.Timestamp
		enc.History = append(enc.History, record)
		enc.State = StateTurnInProgress

		switch {
		case enc.A.Defeated:
			enc.Outcome = OutcomeBWon
			enc.State = StateResolved
		case enc.B.Defeated:
			enc.Outcome = OutcomeAWon
			enc.State = StateResolved
		case enc.Turn >= enc.Config.MaxTurns:
			enc.Outcome = OutcomeDraw
			enc.State = StateResolved
		}
	}
	return enc
}
