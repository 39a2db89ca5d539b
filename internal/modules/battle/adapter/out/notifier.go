package out

import (
	"focusforge/internal/modules/battle/domain"
	"focusforge/internal/modules/battle/dto"
	battleout "focusforge/internal/modules/battle/port/out"
)

// ChannelNotifier bridges engine events onto a channel the TUI can select on.
// Sends never block: if the consumer lags, the oldest event is dropped in
// favor of the newest one.
type ChannelNotifier struct {
	events chan dto.Event
}

func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelNotifier{events: make(chan dto.Event, buffer)}
}

func (n *ChannelNotifier) Events() <-chan dto.Event {
	return n.events
}

func (n *ChannelNotifier) BattleStateUpdated(snapshot domain.Snapshot) {
	state := dto.BattleState{
		SessionID:        snapshot.SessionID,
		MonsterID:        snapshot.MonsterID,
		MonsterName:      snapshot.MonsterName,
		MonsterIcon:      snapshot.MonsterIcon,
		CurrentHP:        snapshot.CurrentHP,
		MaxHP:            snapshot.MaxHP,
		ElapsedSeconds:   snapshot.ElapsedSeconds,
		RemainingSeconds: snapshot.RemainingSeconds,
		DurationSeconds:  snapshot.DurationSeconds,
		HadDistractions:  snapshot.HadDistractions,
		BattleLog:        snapshot.BattleLog,
	}
	n.send(dto.Event{State: &state})
}

func (n *ChannelNotifier) SessionResolved(outcome domain.Outcome) {
	out := dto.BattleOutcome{
		SessionID:       outcome.SessionID,
		MonsterID:       outcome.MonsterID,
		MonsterName:     outcome.MonsterName,
		MonsterIcon:     outcome.MonsterIcon,
		Result:          string(outcome.Result),
		StartTime:       outcome.StartTime,
		EndTime:         outcome.EndTime,
		DurationSeconds: outcome.DurationSeconds,
		ElapsedSeconds:  outcome.ElapsedSeconds,
		FinalHP:         outcome.FinalHP,
		MaxHP:           outcome.MaxHP,
		HadDistractions: outcome.HadDistractions,
		XPEarned:        outcome.XPEarned,
		XPMessages:      outcome.XPMessages,
		PomodoroCredit:  outcome.PomodoroCredit,
		CurrentStreak:   outcome.CurrentStreak,
		BattleLog:       outcome.BattleLog,
	}
	n.send(dto.Event{Outcome: &out})
}

func (n *ChannelNotifier) send(ev dto.Event) {
	for {
		select {
		case n.events <- ev:
			return
		default:
			select {
			case <-n.events:
			default:
			}
		}
	}
}

var _ battleout.Notifier = (*ChannelNotifier)(nil)
