package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"moonwatch/internal/pricewatch"
	"moonwatch/internal/report"
)

// PositionSource builds a fresh position report.
type PositionSource interface {
	PositionReport(ctx context.Context, opts report.Options) (*report.Report, error)
}

// PriceSource builds a fresh price snapshot.
type PriceSource interface {
	PriceSnapshot(ctx context.Context) (*pricewatch.Snapshot, error)
}

type Router struct {
	positions PositionSource
	prices    PriceSource
}

func NewRouter(positions PositionSource, prices PriceSource) *Router {
	return &Router{positions: positions, prices: prices}
}

// Register mounts the snapshot routes on group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	if r.positions != nil {
		group.GET("/positions", r.handlePositions)
	}
	if r.prices != nil {
		group.GET("/prices", r.handlePrices)
	}
}

func (r *Router) handlePositions(c *gin.Context) {
	opts := report.Options{
		Sort:      report.ParseSort(c.Query("sort")),
		HideEmpty: queryBool(c, "hide_empty"),
	}
	rep, err := r.positions.PositionReport(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newPositionsResponse(rep))
}

func (r *Router) handlePrices(c *gin.Context) {
	spec := pricewatch.NormalizeSort(report.ParseSort(c.Query("sort")))
	snap, err := r.prices.PriceSnapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newPricesResponse(snap, spec))
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}
