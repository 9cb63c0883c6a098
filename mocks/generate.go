package mocks

//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/chartscribe-lab/chartscribe/internal/datasource DataSource
//go:generate mockgen -destination=./mock_generator.go -package=mocks github.com/chartscribe-lab/chartscribe/internal/report Generator
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/chartscribe-lab/chartscribe/pkg/marketdata/provider Provider
