package output

import (
	"context"

	"stock-advisor/internal/domain/entity"
)

type MarketDataPort interface {
	SearchTicker(ctx context.Context, query string) (string, error)
	PriceHistory(ctx context.Context, symbol string) ([]entity.PricePoint, error)
	BalanceSheet(ctx context.Context, symbol string) (*entity.BalanceSheet, error)
}

type NewsPort interface {
	Search(ctx context.Context, query string) ([]string, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
