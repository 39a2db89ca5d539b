package in

import (
	"context"

	"focusforge/internal/modules/progress/dto"
)

type Usecase interface {
	Overview(ctx context.Context) (dto.StatsOutput, error)
}
