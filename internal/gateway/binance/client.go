package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"moonwatch/internal/logger"
	"moonwatch/internal/market"
	"moonwatch/internal/pkg/circuit"
)

// codeInvalidSymbol is the Binance error code for an unknown symbol.
const codeInvalidSymbol = -1121

// Client is a read-only view of one USDⓈ-M futures account. It implements
// market.Gateway.
type Client struct {
	cfg     Config
	api     *futures.Client
	limiter *rate.Limiter
	breaker *circuit.Breaker
}

var _ market.Gateway = (*Client)(nil)

func New(cfg Config, creds Credentials) (*Client, error) {
	final := cfg.withDefaults()
	api := futures.NewClient(creds.APIKey, creds.APISecret)
	api.BaseURL = final.RESTBaseURL
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.ProxyURL != "" {
		proxyURL, err := url.Parse(final.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	api.HTTPClient = httpClient
	return &Client{
		cfg:     final,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(final.RateLimit), final.RateBurst),
		breaker: circuit.New("binance", final.BreakerThreshold, final.BreakerCooldown),
	}, nil
}

// wait admits one REST call through the breaker and the rate limiter.
func (c *Client) wait(ctx context.Context) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("binance: %w", circuit.ErrOpen)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// record feeds a call outcome to the breaker. An API error means the
// exchange answered, so only transport failures count against it.
func (c *Client) record(ctx context.Context, err error) {
	var apiErr *common.APIError
	switch {
	case err == nil, errors.As(err, &apiErr):
		c.breaker.RecordSuccess()
	case ctx.Err() != nil:
	default:
		c.breaker.RecordFailure()
	}
}

func (c *Client) recvWindow() futures.RequestOption {
	return futures.WithRecvWindow(c.cfg.RecvWindow.Milliseconds())
}

// SyncTime aligns request timestamps with the exchange clock.
func (c *Client) SyncTime(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	offset, err := c.api.NewSetServerTimeService().Do(ctx)
	c.record(ctx, err)
	if err != nil {
		return fmt.Errorf("sync server time: %w", err)
	}
	logger.Debugf("binance server time offset %dms", offset)
	return nil
}

// WalletBalance returns the quote asset's balance. An account without that
// asset has an empty wallet.
func (c *Client) WalletBalance(ctx context.Context) (market.Wallet, error) {
	if err := c.wait(ctx); err != nil {
		return market.Wallet{}, err
	}
	balances, err := c.api.NewGetBalanceService().Do(ctx, c.recvWindow())
	c.record(ctx, err)
	if err != nil {
		return market.Wallet{}, wrapAPIError("balance", err)
	}
	return walletFromBalances(balances, c.cfg.QuoteAsset)
}

// OpenPositions returns every position row. Position risk and account
// margins are fetched concurrently and joined by symbol and position side.
func (c *Client) OpenPositions(ctx context.Context) ([]market.Position, error) {
	var (
		risks   []*futures.PositionRisk
		account *futures.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.wait(gctx); err != nil {
			return err
		}
		res, err := c.api.NewGetPositionRiskService().Do(gctx, c.recvWindow())
		c.record(gctx, err)
		if err != nil {
			return wrapAPIError("position risk", err)
		}
		risks = res
		return nil
	})
	g.Go(func() error {
		if err := c.wait(gctx); err != nil {
			return err
		}
		res, err := c.api.NewGetAccountService().Do(gctx, c.recvWindow())
		c.record(gctx, err)
		if err != nil {
			return wrapAPIError("account", err)
		}
		account = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var margins []*futures.AccountPosition
	if account != nil {
		margins = account.Positions
	}
	return mergePositions(risks, margins), nil
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]market.Order, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	orders, err := c.api.NewListOpenOrdersService().Symbol(symbol).Do(ctx, c.recvWindow())
	c.record(ctx, err)
	if err != nil {
		return nil, wrapAPIError("open orders "+symbol, err)
	}
	return convertOrders(orders), nil
}

func (c *Client) Tickers(ctx context.Context) ([]market.Ticker, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	stats, err := c.api.NewListPriceChangeStatsService().Do(ctx)
	c.record(ctx, err)
	if err != nil {
		return nil, wrapAPIError("24h tickers", err)
	}
	return convertTickers(stats), nil
}

func (c *Client) RecentKline(ctx context.Context, symbol, interval string, since time.Time) (market.Kline, error) {
	klines, err := c.klines(ctx, symbol, interval, since, 0)
	if err != nil {
		return market.Kline{}, err
	}
	return klines[len(klines)-1], nil
}

func (c *Client) KlineAt(ctx context.Context, symbol, interval string, at time.Time) (market.Kline, error) {
	klines, err := c.klines(ctx, symbol, interval, at, 1)
	if err != nil {
		return market.Kline{}, err
	}
	return klines[0], nil
}

// klines returns at least one candle or an error.
func (c *Client) klines(ctx context.Context, symbol, interval string, since time.Time, limit int) ([]market.Kline, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	svc := c.api.NewKlinesService().Symbol(symbol).Interval(interval).StartTime(since.UnixMilli())
	if limit > 0 {
		svc = svc.Limit(limit)
	}
	raw, err := svc.Do(ctx)
	c.record(ctx, err)
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("klines %s %s", symbol, interval), err)
	}
	out := convertKlines(raw)
	if len(out) == 0 {
		return nil, fmt.Errorf("klines %s %s: %w", symbol, interval, market.ErrNoData)
	}
	return out, nil
}

func wrapAPIError(op string, err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol {
		return fmt.Errorf("%s: %w: %s", op, market.ErrSymbolNotFound, apiErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}
