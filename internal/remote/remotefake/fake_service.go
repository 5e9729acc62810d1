// Package remotefake provides a mock remote.Service for tests.
package remotefake

import (
	"context"
	"strconv"

	"github.com/stretchr/testify/mock"

	"github.com/han8909227/avatax-go/internal/remote"
)

// Service is a testify mock of remote.Service.
type Service struct {
	mock.Mock
}

var _ remote.Service = (*Service)(nil)

func (s *Service) FetchLocationTaxContent(ctx context.Context, companyID, locationID int64) (*remote.Response, error) {
	args := s.Called(ctx, companyID, locationID)
	return response(args)
}

func (s *Service) DownloadZipRates(ctx context.Context, date string) (*remote.Response, error) {
	args := s.Called(ctx, date)
	return response(args)
}

func (s *Service) ListCompanies(ctx context.Context) (*remote.Response, error) {
	args := s.Called(ctx)
	return response(args)
}

func (s *Service) TaxRatesByPostalCode(ctx context.Context, country, postalCode string) (*remote.Response, error) {
	args := s.Called(ctx, country, postalCode)
	return response(args)
}

func (s *Service) Ping(ctx context.Context) (*remote.Response, error) {
	args := s.Called(ctx)
	return response(args)
}

func response(args mock.Arguments) (*remote.Response, error) {
	resp, _ := args.Get(0).(*remote.Response)
	return resp, args.Error(1)
}

// OK builds a 200 response carrying body.
func OK(op remote.Operation, body string) *remote.Response {
	return &remote.Response{Operation: op, StatusCode: 200, Content: []byte(body)}
}

// Companies builds a ListCompanies body with one default company.
func Companies(defaultID int64) *remote.Response {
	return OK(remote.OpListCompanies,
		`{"@recordsetCount":2,"value":[{"id":1,"isDefault":false},{"id":`+strconv.FormatInt(defaultID, 10)+`,"isDefault":true}]}`)
}
