package dto

// Event is a single battle notification pushed to the UI. Exactly one of the
// fields is set.
type Event struct {
	State   *BattleState
	Outcome *BattleOutcome
}
