package endpoint

import (
	"context"
	"testing"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/Ruscigno/StockPulse/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	submitted []service.SubmitRequest
}

func (m *MockService) Submit(ctx context.Context, req service.SubmitRequest) (service.SubmitResponse, error) {
	m.submitted = append(m.submitted, req)
	return service.SubmitResponse{}, nil
}

func (m *MockService) History(ctx context.Context, req service.HistoryRequest) (service.HistoryResponse, error) {
	return service.HistoryResponse{}, nil
}

type MockHealth struct{}

func (MockHealth) CheckHealth(ctx context.Context) service.HealthResponse {
	return service.HealthResponse{Status: service.HealthStatusHealthy}
}

func TestSubmitEndpoint(t *testing.T) {
	svc := &MockService{}
	e := MakeEndpoints(svc, MockHealth{})

	resp, err := e.Submit(context.Background(), service.SubmitRequest{Ticker: "AAPL", Period: "1y"})
	require.NoError(t, err)
	assert.IsType(t, service.SubmitResponse{}, resp)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "AAPL", svc.submitted[0].Ticker)
}

func TestEndpointsRejectWrongRequestType(t *testing.T) {
	e := MakeEndpoints(&MockService{}, MockHealth{})

	_, err := e.Submit(context.Background(), "AAPL")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)

	_, err = e.History(context.Background(), 10)
	assert.Error(t, err)
}

func TestCheckHealthEndpoint(t *testing.T) {
	e := MakeEndpoints(&MockService{}, MockHealth{})
	resp, err := e.CheckHealth(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, service.HealthStatusHealthy, resp.(service.HealthResponse).Status)
}
