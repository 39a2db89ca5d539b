package in

import (
	"context"

	"focusforge/internal/modules/progress/dto"
	progressin "focusforge/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Overview(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Overview(ctx)
}
