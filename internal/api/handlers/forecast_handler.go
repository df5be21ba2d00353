package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/recommend"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/service"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ForecastHandler struct {
	service   *service.ForecastService
	uploadDir string
	dataDir   string
}

func NewForecastHandler(forecastService *service.ForecastService, uploadDir, dataDir string) *ForecastHandler {
	return &ForecastHandler{service: forecastService, uploadDir: uploadDir, dataDir: dataDir}
}

type runRequest struct {
	Path string `json:"path"`
}

// CreateRun runs the full forecast flow on an uploaded workbook, or on a
// workbook under the data directory given as JSON. Uploads are removed once
// the run finishes.
func (h *ForecastHandler) CreateRun(c *gin.Context) {
	path, uploaded, err := h.runPath(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if uploaded {
		defer func() {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn().Err(err).Str("path", path).Msg("failed to remove uploaded workbook")
			}
		}()
	}

	summary, err := h.service.Run(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyHistory) {
			domainError(c, err)
			return
		}
		log.Error().Err(err).Str("path", path).Msg("forecast run failed")
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, summary)
}

// runPath returns the workbook to run on and whether it is a temporary
// upload.
func (h *ForecastHandler) runPath(c *gin.Context) (string, bool, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			return "", false, fmt.Errorf("file is required")
		}
		if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
			return "", false, fmt.Errorf("failed to prepare upload dir: %w", err)
		}
		name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename))
		dest := filepath.Join(h.uploadDir, name)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			return "", false, fmt.Errorf("failed to save uploaded file: %w", err)
		}
		return dest, true, nil
	}

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Path) == "" {
		return "", false, fmt.Errorf("multipart file or JSON path is required")
	}
	path, err := resolveDataPath(h.dataDir, req.Path)
	if err != nil {
		return "", false, err
	}
	return path, false, nil
}

// resolveDataPath maps a requested path onto dataDir. Relative paths are
// taken from dataDir; anything resolving outside it is rejected.
func resolveDataPath(dataDir, requested string) (string, error) {
	if dataDir == "" {
		return "", fmt.Errorf("server-side paths are disabled")
	}
	root, err := filepath.Abs(dataDir)
	if err != nil {
		return "", fmt.Errorf("invalid data dir: %w", err)
	}

	path := filepath.Clean(strings.TrimSpace(requested))
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path must be inside the data directory")
	}
	return path, nil
}

func (h *ForecastHandler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Products())
}

// GetForecasts returns forecasts filtered by min_confidence, defaulting to
// the configured report threshold.
func (h *ForecastHandler) GetForecasts(c *gin.Context) {
	threshold := h.service.Settings().MinConfidenceThreshold
	if raw := strings.TrimSpace(c.Query("min_confidence")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			errorResponse(c, http.StatusBadRequest, "min_confidence must be a number between 0 and 100")
			return
		}
		threshold = v
	}

	c.JSON(http.StatusOK, h.service.Forecasts(c.Request.Context(), threshold))
}

func (h *ForecastHandler) GetBatches(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Batches())
}

type calendarDay struct {
	Date   string                  `json:"date"`
	Orders []domain.ForecastResult `json:"orders"`
}

func (h *ForecastHandler) GetCalendar(c *gin.Context) {
	calendar := h.service.Calendar()

	days := make([]calendarDay, 0, len(calendar))
	for _, day := range recommend.CalendarDays(calendar) {
		days = append(days, calendarDay{Date: day.Format(dateLayout), Orders: calendar[day]})
	}

	c.JSON(http.StatusOK, days)
}

func (h *ForecastHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.Export(&buf); err != nil {
		domainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="order_table.xlsx"`)
	c.Data(http.StatusOK, storage.XLSXContentType, buf.Bytes())
}

// GetRecommendations accepts start and end as YYYY-MM-DD.
func (h *ForecastHandler) GetRecommendations(c *gin.Context) {
	start, end := h.service.DefaultWindow()

	var err error
	if raw := c.Query("start"); raw != "" {
		if start, err = time.ParseInLocation(dateLayout, raw, start.Location()); err != nil {
			errorResponse(c, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
	}
	if raw := c.Query("end"); raw != "" {
		if end, err = time.ParseInLocation(dateLayout, raw, end.Location()); err != nil {
			errorResponse(c, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		// inclusive of the whole end day
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		errorResponse(c, http.StatusBadRequest, "end must not be before start")
		return
	}

	recs := h.service.Recommendations(start, end)
	if recs == nil {
		recs = []domain.ForecastResult{}
	}
	c.JSON(http.StatusOK, recs)
}

type settingsResponse struct {
	Settings     config.ForecastSettings `json:"settings"`
	Descriptions map[string]string       `json:"descriptions"`
}

func (h *ForecastHandler) GetSettings(c *gin.Context) {
	fields := []string{
		"DaysAhead", "MinConfidenceThreshold", "SafetyFactorForOrderPlacement",
		"StableVolumeThreshold", "DefaultSeasonalityCoefficient", "SimilarityThreshold",
		"DefaultDeliveryDays", "MaxProjections", "DefaultOrderInterval", "BatchWindowDays",
	}
	descriptions := make(map[string]string, len(fields))
	for _, f := range fields {
		descriptions[f] = config.Describe(f)
	}

	c.JSON(http.StatusOK, settingsResponse{
		Settings:     h.service.Settings(),
		Descriptions: descriptions,
	})
}
