package in

import (
	"context"

	"focusforge/internal/modules/battle/dto"
)

type Usecase interface {
	StartSession(ctx context.Context, monsterID string, durationSeconds int) (dto.BattleState, error)
	EndSessionEarly(ctx context.Context) (dto.BattleOutcome, error)
	GetState(ctx context.Context) (dto.BattleState, error)
	LastOutcome(ctx context.Context) (dto.BattleOutcome, error)
	Recover(ctx context.Context) error
	ForceCleanup(ctx context.Context) error
}
