package usecase

import (
	"context"

	"focusforge/internal/modules/progress/dto"
	progressin "focusforge/internal/modules/progress/port/in"
	"focusforge/internal/modules/progress/service"
)

type Interactor struct {
	svc *service.ProgressService
}

func NewInteractor(svc *service.ProgressService) progressin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Overview(ctx context.Context) (dto.StatsOutput, error) {
	overview, err := i.svc.Overview(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	history := make([]dto.HistoryItem, 0, len(overview.History))
	for _, h := range overview.History {
		history = append(history, dto.HistoryItem{Success: h.Success, Date: h.Date})
	}
	return dto.StatsOutput{
		TotalPomodoros:   overview.Stats.TotalPomodoros,
		CurrentXP:        overview.Stats.CurrentXP,
		CurrentStreak:    overview.Stats.CurrentStreak,
		Level:            overview.Level,
		Title:            overview.Title,
		XPIntoLevel:      overview.XPIntoLevel,
		XPForNextLevel:   overview.XPForNextLevel,
		MonstersDefeated: overview.Stats.MonstersDefeated,
		MostDefeated:     mostDefeated(overview.Stats.MonstersDefeated),
		History:          history,
	}, nil
}

func mostDefeated(defeated map[string]int) string {
	best, bestCount := "", 0
	for id, count := range defeated {
		if count > bestCount || (count == bestCount && count > 0 && id < best) {
			best, bestCount = id, count
		}
	}
	return best
}
