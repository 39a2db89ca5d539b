package in

import (
	"context"

	"focusforge/internal/modules/bestiary/dto"
)

type Usecase interface {
	ListMonsters(ctx context.Context) ([]dto.MonsterOutput, error)
	GetMonster(ctx context.Context, id string) (dto.MonsterOutput, error)
}
