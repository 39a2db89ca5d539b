package usecase

import (
	"context"

	"focusforge/internal/modules/bestiary/domain"
	"focusforge/internal/modules/bestiary/dto"
	bestiaryin "focusforge/internal/modules/bestiary/port/in"
	"focusforge/internal/modules/bestiary/service"
)

type Interactor struct {
	svc *service.BestiaryService
}

func NewInteractor(svc *service.BestiaryService) bestiaryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListMonsters(ctx context.Context) ([]dto.MonsterOutput, error) {
	monsters, err := i.svc.ListMonsters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MonsterOutput, 0, len(monsters))
	for _, m := range monsters {
		out = append(out, toOutput(m))
	}
	return out, nil
}

func (i *Interactor) GetMonster(ctx context.Context, id string) (dto.MonsterOutput, error) {
	monster, err := i.svc.Monster(ctx, id)
	if err != nil {
		return dto.MonsterOutput{}, err
	}
	return toOutput(monster), nil
}

func toOutput(m domain.Monster) dto.MonsterOutput {
	return dto.MonsterOutput{
		ID:           m.ID,
		Name:         m.Name,
		Icon:         m.Icon,
		Description:  m.Description,
		HP:           m.HP,
		TriggerSites: m.TriggerSites,
		TriggerEvent: string(m.TriggerEvent),
	}
}
