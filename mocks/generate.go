package mocks

//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/marketloop/backtestd/internal/store Store
//go:generate mockgen -destination=./mock_marketdata.go -package=mocks github.com/marketloop/backtestd/pkg/marketdata Provider,Reader,Writer
