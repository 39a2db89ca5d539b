package out

import (
	"context"

	"focusforge/internal/modules/battle/domain"
	bestiarydomain "focusforge/internal/modules/bestiary/domain"
	progressdomain "focusforge/internal/modules/progress/domain"
)

// SessionStore persists the single live session. Load returns (nil, nil) when
// no session is stored.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// OutcomeStore keeps the most recent battle outcome until it is consumed.
type OutcomeStore interface {
	LoadOutcome(ctx context.Context) (*domain.Outcome, error)
	SaveOutcome(ctx context.Context, outcome *domain.Outcome) error
	ClearOutcome(ctx context.Context) error
}

// Observation is one sample of what the user is looking at right now.
type Observation struct {
	Hostname string
	TabID    string
}

// ActivityObserver reports the current foreground activity. Implementations
// must treat "nothing observable" as a zero Observation, not an error.
type ActivityObserver interface {
	Sample(ctx context.Context) (Observation, error)
	Close() error
}

// Notifier pushes battle events to whoever is watching. Implementations must
// not block the engine.
type Notifier interface {
	BattleStateUpdated(snapshot domain.Snapshot)
	SessionResolved(outcome domain.Outcome)
}

// MonsterCatalog resolves monster definitions and reward tuning for battles.
type MonsterCatalog interface {
	Monster(ctx context.Context, id string) (bestiarydomain.Monster, error)
	XPConfig(ctx context.Context) (bestiarydomain.XPConfig, error)
}

// RewardLedger settles a finished battle against the user's progress.
type RewardLedger interface {
	ApplyVictory(ctx context.Context, monsterID string, hadDistractions bool) (progressdomain.Award, error)
	ApplyTimeoutDefeat(ctx context.Context, fullDuration bool) (progressdomain.Award, error)
	ApplyAbandon(ctx context.Context) (progressdomain.Award, error)
	AwardMicroXP(ctx context.Context, amount int) (int, error)
}

// ChronicleStore archives finished battles as human-readable reports.
type ChronicleStore interface {
	WriteReport(ctx context.Context, outcome domain.Outcome) (string, error)
}
