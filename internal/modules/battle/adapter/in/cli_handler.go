package in

import (
	"context"

	"focusforge/internal/modules/battle/dto"
	battlein "focusforge/internal/modules/battle/port/in"
)

type CLIHandler struct {
	usecase battlein.Usecase
}

func NewCLIHandler(usecase battlein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) StartSession(ctx context.Context, monsterID string, durationSeconds int) (dto.BattleState, error) {
	return h.usecase.StartSession(ctx, monsterID, durationSeconds)
}

func (h CLIHandler) EndSessionEarly(ctx context.Context) (dto.BattleOutcome, error) {
	return h.usecase.EndSessionEarly(ctx)
}

func (h CLIHandler) GetState(ctx context.Context) (dto.BattleState, error) {
	return h.usecase.GetState(ctx)
}

func (h CLIHandler) LastOutcome(ctx context.Context) (dto.BattleOutcome, error) {
	return h.usecase.LastOutcome(ctx)
}

func (h CLIHandler) Recover(ctx context.Context) error {
	return h.usecase.Recover(ctx)
}

func (h CLIHandler) ForceCleanup(ctx context.Context) error {
	return h.usecase.ForceCleanup(ctx)
}
