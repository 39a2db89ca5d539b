package usecase

import (
	"context"

	"focusforge/internal/modules/battle/domain"
	"focusforge/internal/modules/battle/dto"
	battlein "focusforge/internal/modules/battle/port/in"
	"focusforge/internal/modules/battle/service"
)

type Interactor struct {
	engine *service.Engine
}

func NewInteractor(engine *service.Engine) battlein.Usecase {
	return &Interactor{engine: engine}
}

func (i *Interactor) StartSession(ctx context.Context, monsterID string, durationSeconds int) (dto.BattleState, error) {
	snapshot, err := i.engine.StartSession(ctx, monsterID, durationSeconds)
	if err != nil {
		return dto.BattleState{}, err
	}
	return toState(snapshot), nil
}

func (i *Interactor) EndSessionEarly(ctx context.Context) (dto.BattleOutcome, error) {
	outcome, err := i.engine.EndSessionEarly(ctx)
	if err != nil {
		return dto.BattleOutcome{}, err
	}
	return toOutcome(outcome), nil
}

func (i *Interactor) GetState(ctx context.Context) (dto.BattleState, error) {
	snapshot, err := i.engine.State(ctx)
	if err != nil {
		return dto.BattleState{}, err
	}
	return toState(snapshot), nil
}

func (i *Interactor) LastOutcome(ctx context.Context) (dto.BattleOutcome, error) {
	outcome, err := i.engine.LastOutcome(ctx)
	if err != nil {
		return dto.BattleOutcome{}, err
	}
	return toOutcome(outcome), nil
}

func (i *Interactor) Recover(ctx context.Context) error {
	return i.engine.Recover(ctx)
}

func (i *Interactor) ForceCleanup(ctx context.Context) error {
	return i.engine.ForceCleanup(ctx)
}

func toState(s domain.Snapshot) dto.BattleState {
	return dto.BattleState{
		SessionID:        s.SessionID,
		MonsterID:        s.MonsterID,
		MonsterName:      s.MonsterName,
		MonsterIcon:      s.MonsterIcon,
		CurrentHP:        s.CurrentHP,
		MaxHP:            s.MaxHP,
		ElapsedSeconds:   s.ElapsedSeconds,
		RemainingSeconds: s.RemainingSeconds,
		DurationSeconds:  s.DurationSeconds,
		HadDistractions:  s.HadDistractions,
		BattleLog:        s.BattleLog,
	}
}

func toOutcome(o domain.Outcome) dto.BattleOutcome {
	return dto.BattleOutcome{
		SessionID:       o.SessionID,
		MonsterID:       o.MonsterID,
		MonsterName:     o.MonsterName,
		MonsterIcon:     o.MonsterIcon,
		Result:          string(o.Result),
		StartTime:       o.StartTime,
		EndTime:         o.EndTime,
		DurationSeconds: o.DurationSeconds,
		ElapsedSeconds:  o.ElapsedSeconds,
		FinalHP:         o.FinalHP,
		MaxHP:           o.MaxHP,
		HadDistractions: o.HadDistractions,
		XPEarned:        o.XPEarned,
		XPMessages:      o.XPMessages,
		PomodoroCredit:  o.PomodoroCredit,
		CurrentStreak:   o.CurrentStreak,
		BattleLog:       o.BattleLog,
	}
}
