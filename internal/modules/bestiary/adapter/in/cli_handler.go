package in

import (
	"context"

	"focusforge/internal/modules/bestiary/dto"
	bestiaryin "focusforge/internal/modules/bestiary/port/in"
)

type CLIHandler struct {
	usecase bestiaryin.Usecase
}

func NewCLIHandler(usecase bestiaryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListMonsters(ctx context.Context) ([]dto.MonsterOutput, error) {
	return h.usecase.ListMonsters(ctx)
}

func (h CLIHandler) GetMonster(ctx context.Context, id string) (dto.MonsterOutput, error) {
	return h.usecase.GetMonster(ctx, id)
}
