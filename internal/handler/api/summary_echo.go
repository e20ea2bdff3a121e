package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"EquityLens/internal/analytics"
	models "EquityLens/internal/domain/models"
	"EquityLens/internal/service/metrics"
	"EquityLens/internal/service/ratelimit"
	"EquityLens/internal/usecase"
	xhttp "EquityLens/pkg/http"
	xlogger "EquityLens/pkg/logger"
	"EquityLens/pkg/util"

	"github.com/labstack/echo/v4"
)

// exportHeader is the column layout of the CSV export.
var exportHeader = []string{
	"Symbol",
	"Number of Trading Days",
	"Lowest Price",
	"Highest Price",
	"Short-Term (7-day) Moving Average",
	"Long-Term (30-day) Moving Average",
	"Price Change (%)",
	"Average Daily Volume",
	"Volatility (%)",
	"Trend",
	"Investment Signal",
}

// SummaryEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type SummaryEchoHandler struct {
	logger  *xlogger.Logger
	analyze *usecase.AnalyzeUseCase
	batch   *usecase.BatchAnalyzeUseCase
	bars    *usecase.BarsUseCase
	health  func(ctx echo.Context) error
	rl      *ratelimit.Limiter
}

func NewSummaryEchoHandler(
	logger *xlogger.Logger,
	analyze *usecase.AnalyzeUseCase,
	batch *usecase.BatchAnalyzeUseCase,
	bars *usecase.BarsUseCase,
) *SummaryEchoHandler {
	metrics.Register()
	return &SummaryEchoHandler{
		logger:  logger,
		analyze: analyze,
		batch:   batch,
		bars:    bars,
		rl:      ratelimit.New(),
	}
}

// SetHealthCheck injects a storage health probe for /health.
func (h *SummaryEchoHandler) SetHealthCheck(fn func(ctx echo.Context) error) {
	h.health = fn
}

func (h *SummaryEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/summary", h.Summary)
	g.GET("/summary/all", h.SummaryAll)
	g.GET("/metrics", h.Metrics)
	g.GET("/bars", h.Bars)
	g.GET("/symbols", h.Symbols)
	g.GET("/export", h.Export)
	e.GET("/health", h.Health)
}

func (h *SummaryEchoHandler) Summary(c echo.Context) error {
	start := time.Now()
	endpoint := "summary"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from := util.ParseDateDefault(req.From, time.Time{})
	to := util.ParseDateDefault(req.To, time.Time{})

	res, err := h.analyze.Summary(c.Request().Context(), usecase.AnalyzeParams{
		Symbol: strings.ToUpper(req.Symbol),
		From:   from,
		To:     to,
	})
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, analysisError(req.Symbol, err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, res)
}

func (h *SummaryEchoHandler) SummaryAll(c echo.Context) error {
	start := time.Now()
	endpoint := "summary_all"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":summary_all", 5, 1) {
		return c.JSON(http.StatusTooManyRequests, xhttp.APIResponse{
			Status:  http.StatusTooManyRequests,
			Message: "rate limited",
		})
	}

	res, err := h.batch.AnalyzeAll(c.Request().Context())
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("summary_all usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SummaryEchoHandler) Metrics(c echo.Context) error {
	start := time.Now()
	endpoint := "metrics"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.MetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyze.MetricsLatestN(c.Request().Context(), strings.ToUpper(req.Symbol), req.N)
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("metrics usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, analysisError(req.Symbol, err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SummaryEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := util.ParseDateDefault(req.From, now.AddDate(-1, 0, 0))
	to := util.ParseDateDefault(req.To, now)

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol: strings.ToUpper(req.Symbol),
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res.Bars, int64(len(res.Bars)))
}

func (h *SummaryEchoHandler) Symbols(c echo.Context) error {
	syms, err := h.bars.ListSymbols(c.Request().Context())
	if err != nil {
		h.logger.Error("symbols usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, syms, int64(len(syms)))
}

// Export streams the batch summary as CSV, one row per symbol. The symbols
// query param optionally narrows the export to a comma-separated list.
func (h *SummaryEchoHandler) Export(c echo.Context) error {
	start := time.Now()
	endpoint := "export"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":export", 5, 1) {
		return c.JSON(http.StatusTooManyRequests, xhttp.APIResponse{
			Status:  http.StatusTooManyRequests,
			Message: "rate limited",
		})
	}

	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	batch, err := h.batch.AnalyzeAll(c.Request().Context())
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("export usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	var keep map[string]bool
	if req.Symbols != "" {
		keep = make(map[string]bool)
		for _, s := range strings.Split(req.Symbols, ",") {
			keep[strings.ToUpper(strings.TrimSpace(s))] = true
		}
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="summary.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, s := range batch.Symbols {
		if keep != nil && !keep[s.Symbol] {
			continue
		}
		if err := w.Write(summaryRow(s)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (h *SummaryEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c); err != nil {
			return c.JSON(http.StatusServiceUnavailable, xhttp.APIResponse{
				Status:  http.StatusServiceUnavailable,
				Message: err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: "ok",
	})
}

// analysisError maps pipeline failures to transport errors. A symbol without
// bars is a 404; a series the pipeline cannot price is a 422.
func analysisError(symbol string, err error) error {
	switch {
	case errors.Is(err, analytics.ErrNoData):
		return xhttp.NotFoundErrorf("no data for symbol %s", symbol).WithError(err)
	case errors.Is(err, analytics.ErrZeroBaseline):
		return xhttp.UnprocessableError("series starts at a zero close").WithError(err)
	default:
		return err
	}
}

func summaryRow(s models.SymbolSummary) []string {
	return []string{
		s.Symbol,
		strconv.Itoa(s.TradingDays),
		formatFloat(s.LowestPrice),
		formatFloat(s.HighestPrice),
		formatFloatPtr(s.MA7),
		formatFloatPtr(s.MA30),
		formatFloat(s.PriceChangePct),
		formatFloat(s.AvgVolume),
		formatFloatPtr(s.VolatilityPct),
		string(s.Trend),
		string(s.Signal),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatFloat(*v)
}
