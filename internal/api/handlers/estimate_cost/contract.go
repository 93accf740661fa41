package estimate_cost

import (
	"context"

	estimateCost "github.com/m04kA/makerspace-reservations/internal/usecase/estimate_cost"
)

type EstimateCostUseCase interface {
	Execute(ctx context.Context, req *estimateCost.Request) (*estimateCost.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
