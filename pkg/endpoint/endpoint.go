package endpoint

import (
	"context"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/Ruscigno/StockPulse/pkg/service"
	"github.com/go-kit/kit/endpoint"
)

// Endpoints holds all Go-Kit endpoints.
type Endpoints struct {
	Submit      endpoint.Endpoint
	History     endpoint.Endpoint
	CheckHealth endpoint.Endpoint
}

// MakeEndpoints creates endpoints for the service.
func MakeEndpoints(s service.Service, h service.HealthService) Endpoints {
	return Endpoints{
		Submit:      makeSubmitEndpoint(s),
		History:     makeHistoryEndpoint(s),
		CheckHealth: makeCheckHealthEndpoint(h),
	}
}

func invalidRequest() error {
	return apperrors.NewAppError(apperrors.ErrCodeBadRequest, "invalid request")
}

func makeSubmitEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.SubmitRequest)
		if !ok {
			return nil, invalidRequest()
		}
		return s.Submit(ctx, req)
	}
}

func makeHistoryEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.HistoryRequest)
		if !ok {
			return nil, invalidRequest()
		}
		return s.History(ctx, req)
	}
}

func makeCheckHealthEndpoint(h service.HealthService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return h.CheckHealth(ctx), nil
	}
}
