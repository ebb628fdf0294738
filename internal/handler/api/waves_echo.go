package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
	"NeelyWave/internal/repository"
	"NeelyWave/internal/services/waves"
	"NeelyWave/internal/usecase"
	xhttp "NeelyWave/pkg/http"
	xlogger "NeelyWave/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WavesEchoHandler serves the wave analysis API.
type WavesEchoHandler struct {
	logger    *xlogger.Logger
	analysis  *usecase.WaveAnalysisUseCase
	maxUpload int64
}

func NewWavesEchoHandler(logger *xlogger.Logger, analysis *usecase.WaveAnalysisUseCase, maxUpload int64) *WavesEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &WavesEchoHandler{logger: logger, analysis: analysis, maxUpload: maxUpload}
}

func (h *WavesEchoHandler) RegisterRoutes(g *echo.Group) {
	w := g.Group("/api/waves")
	w.POST("/analyze", h.Analyze)
	w.GET("/series", h.Series)
	w.GET("/resolutions", h.Resolutions)
}

type SeriesResponse struct {
	Symbol     string     `json:"symbol"`
	Resolution string     `json:"resolution"`
	Typical    string     `json:"typical"`
	Kind       string     `json:"kind"`
	Rows       [][]string `json:"rows"`
}

type ResolutionsResponse struct {
	Symbol    string   `json:"symbol"`
	Available []string `json:"available"`
}

// Analyze runs the pipeline on an uploaded table: CSV text, or a JSON array
// of bars when the content type is application/json.
func (h *WavesEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{Symbol: c.QueryParam("symbol")}
	if verr := xhttp.ValidateRequest(c.Request().Context(), req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	body := c.Request().Body
	if h.maxUpload > 0 {
		body = http.MaxBytesReader(c.Response(), body, h.maxUpload)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return xhttp.AppErrorResponse(c, xhttp.TooLargeError("ERR_TOO_LARGE", "body", "upload is too large").
				WithParam("max", tooLarge.Limit))
		}
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("cannot read body").WithError(err))
	}

	bars, err := decodeBars(c.Request().Header.Get(echo.HeaderContentType), raw)
	if err != nil {
		return h.fail(c, "decode upload", err)
	}
	res, err := h.analysis.AnalyzeBars(c.Request().Context(), req.Symbol, bars)
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	return xhttp.SuccessResponse(c, res.Summary)
}

func decodeBars(contentType string, raw []byte) ([]models.Bar, error) {
	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		var bars []models.Bar
		if err := json.Unmarshal(raw, &bars); err != nil {
			return nil, xhttp.BadRequestError("body is not a JSON array of bars").WithError(err)
		}
		return bars, nil
	}
	return repository.ParseCSV(bytes.NewReader(raw))
}

// Series returns one stored series as table rows, or as CSV with format=csv.
func (h *WavesEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := analyzeParams(req.Symbol, req.From, req.To)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	sp := usecase.SeriesParams{
		AnalyzeParams: p,
		Resolution:    domrepo.NormalizeResolution(req.Resolution),
		Typical:       domrepo.NormalizeTypicalType(req.Typical),
		Kind:          domrepo.NormalizeKind(req.Kind),
	}
	s, err := h.analysis.Series(c.Request().Context(), sp)
	if err != nil {
		return h.fail(c, "series", err)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	if req.Format == "csv" {
		var buf bytes.Buffer
		if err := waves.WriteCSV(&buf, s); err != nil {
			return h.fail(c, "write csv", err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="`+sp.Resolution.String()+"_"+sp.Typical.String()+"_"+sp.Kind.String()+`.csv"`)
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
	return xhttp.SuccessResponse(c, &SeriesResponse{
		Symbol:     req.Symbol,
		Resolution: sp.Resolution.String(),
		Typical:    sp.Typical.String(),
		Kind:       sp.Kind.String(),
		Rows:       waves.ToTable(s),
	})
}

// Resolutions lists the resolutions that hold at least one bar.
func (h *WavesEchoHandler) Resolutions(c echo.Context) error {
	req := &models.ResolutionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := analyzeParams(req.Symbol, req.From, req.To)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	res, err := h.analysis.Resolutions(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, "resolutions", err)
	}
	out := &ResolutionsResponse{Symbol: req.Symbol, Available: make([]string, 0, len(res))}
	for _, r := range res {
		out.Available = append(out.Available, r.String())
	}
	return xhttp.SuccessResponse(c, out)
}

func analyzeParams(symbol, from, to string) (usecase.AnalyzeParams, error) {
	p := usecase.AnalyzeParams{Symbol: symbol}
	if from != "" {
		t, ok := xhttp.ParseTime(from)
		if !ok {
			return p, xhttp.NewAppError("ERR_INVALID_TIME", "from", "from is not a valid time", http.StatusBadRequest)
		}
		p.From = t
	}
	if to != "" {
		t, ok := xhttp.ParseTime(to)
		if !ok {
			return p, xhttp.NewAppError("ERR_INVALID_TIME", "to", "to is not a valid time", http.StatusBadRequest)
		}
		p.To = t
	}
	return p, nil
}

func (h *WavesEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("waves "+op+" error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors to HTTP errors: rejected input is a 400,
// absent data a 404, everything else a 500.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case waves.IsRejection(err):
		return xhttp.NewAppError(rejectionCode(err), "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, usecase.ErrInvalidParams):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrTooManyBars):
		return xhttp.TooLargeError("ERR_TOO_MANY_BARS", "", err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrSymbolNotFound):
		return xhttp.NotFoundError("no data for symbol").WithError(err)
	case errors.Is(err, usecase.ErrSeriesUnavailable):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.TimeoutError("analysis timed out").WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}

func rejectionCode(err error) string {
	switch {
	case errors.Is(err, waves.ErrInvalidHeader):
		return "ERR_INVALID_HEADER"
	case errors.Is(err, waves.ErrEmptySeries):
		return "ERR_EMPTY_SERIES"
	case errors.Is(err, waves.ErrInsufficientData):
		return "ERR_INSUFFICIENT_DATA"
	case errors.Is(err, waves.ErrUnknownResolutionSpacing):
		return "ERR_UNKNOWN_RESOLUTION"
	case errors.Is(err, waves.ErrUnsortedSeries):
		return "ERR_UNSORTED_SERIES"
	case errors.Is(err, waves.ErrNonFiniteValue):
		return "ERR_NON_FINITE_VALUE"
	default:
		return "ERR_MALFORMED_ROW"
	}
}
