package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/ingest"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/repository/jsonfile"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterAt(t, t.TempDir())
}

func newTestRouterAt(t *testing.T, dir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mappings := jsonfile.NewMappingStore(filepath.Join(dir, "item_mapping.json"), filepath.Join(dir, "mapping_database.json"))
	forecastService := service.NewForecastService(config.DefaultForecastSettings(), service.ForecastDeps{
		Source:    ingest.NewExcelIngester(),
		Forecasts: jsonfile.NewForecastStore(filepath.Join(dir, "forecasts.json")),
		Mappings:  mappings,
		Now:       func() time.Time { return fixedNow },
	})

	return NewRouter(&Services{
		ForecastService: forecastService,
		MappingService:  service.NewMappingService(mappings, nil),
		UploadDir:       filepath.Join(dir, "uploads"),
		DataDir:         dir,
	}, []string{"*"})
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]interface{}{
		{"Order date", "Order", "Position", "Name", "Article", "Ordered", "Delivered", "Delivery date", "Notes"},
	}
	last := fixedNow.AddDate(0, 0, -12)
	for i := 5; i >= 0; i-- {
		d := last.AddDate(0, 0, -30*i)
		rows = append(rows, []interface{}{
			d.Format("02.01.2006"), "PO-1", "1", "Gear", "G-1", "10", "10", d.AddDate(0, 0, 7).Format("02.01.2006"), "",
		})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func do(r *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "orders.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(workbook(t)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return do(r, http.MethodPost, "/api/v1/runs", body.Bytes(), mw.FormDataContentType())
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestRunAndReadForecasts(t *testing.T) {
	r := newTestRouter(t)

	w := upload(t, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary service.RunSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Lines != 6 || summary.Products != 1 || summary.Forecasts == 0 {
		t.Fatalf("Unexpected summary %+v", summary)
	}

	w = do(r, http.MethodGet, "/api/v1/forecasts", nil, "")
	var forecasts []domain.ForecastResult
	if err := json.Unmarshal(w.Body.Bytes(), &forecasts); err != nil {
		t.Fatal(err)
	}
	if len(forecasts) != summary.Forecasts || forecasts[0].UnifiedArticle != "G-1" {
		t.Errorf("Unexpected forecasts %+v", forecasts)
	}

	w = do(r, http.MethodGet, "/api/v1/products", nil, "")
	var products []domain.UnifiedProduct
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 {
		t.Errorf("Expected 1 product, got %d", len(products))
	}

	w = do(r, http.MethodGet, "/api/v1/recommendations?start=2024-01-01&end=2024-12-31", nil, "")
	var recs []domain.ForecastResult
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("Expected 1 recommendation, got %d", len(recs))
	}

	w = do(r, http.MethodGet, "/api/v1/forecasts/calendar", nil, "")
	var days []struct {
		Date   string                  `json:"date"`
		Orders []domain.ForecastResult `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &days); err != nil {
		t.Fatal(err)
	}
	if len(days) == 0 || len(days[0].Date) != len("2006-01-02") {
		t.Errorf("Unexpected calendar %+v", days)
	}

	w = do(r, http.MethodGet, "/api/v1/forecasts/batches", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for batches, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/api/v1/forecasts/export", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for export, got %d", w.Code)
	}
	if _, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("Expected a workbook, got %v", err)
	}
}

func TestRunRequiresInput(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/runs", []byte(`{}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestRunMissingPath(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/runs", []byte(`{"path":"missing.xlsx"}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestQueryValidation(t *testing.T) {
	r := newTestRouter(t)
	tests := []string{
		"/api/v1/forecasts?min_confidence=abc",
		"/api/v1/forecasts?min_confidence=150",
		"/api/v1/recommendations?start=01.06.2024",
		"/api/v1/recommendations?start=2024-06-10&end=2024-06-01",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			if w := do(r, http.MethodGet, path, nil, ""); w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSettings(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/v1/settings", nil, "")
	var resp struct {
		Settings     config.ForecastSettings `json:"settings"`
		Descriptions map[string]string       `json:"descriptions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Settings != config.DefaultForecastSettings() {
		t.Errorf("Expected defaults, got %+v", resp.Settings)
	}
	if len(resp.Descriptions) != 10 {
		t.Errorf("Expected 10 descriptions, got %d", len(resp.Descriptions))
	}
}

func TestMappingGroups(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/mappings/groups", []byte(`{"name":"Gears"}`), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var g domain.MappingGroup
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatal(err)
	}

	if w := do(r, http.MethodPost, "/api/v1/mappings/groups", []byte(`{"name":"GEARS"}`), "application/json"); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for a duplicate name, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/v1/mappings/groups", []byte(`{"name":"  "}`), "application/json"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty name, got %d", w.Code)
	}

	w = do(r, http.MethodPut, "/api/v1/mappings/groups/"+g.ID, []byte(`{"Name":"Spur gears","UnifiedArticle":"G-1"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatal(err)
	}
	if g.Name != "Spur gears" || g.UnifiedArticle != "G-1" {
		t.Errorf("Unexpected group %+v", g)
	}

	w = do(r, http.MethodPost, "/api/v1/mappings/groups/"+g.ID+"/variations", []byte(`{"kind":"article","value":"G1-OLD"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/api/v1/mappings/groups/"+g.ID+"/variations", []byte(`{"kind":"colour","value":"x"}`), "application/json"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown kind, got %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/v1/mappings/groups/"+g.ID, nil, ""); w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/v1/mappings/groups/"+g.ID, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestMappingImport(t *testing.T) {
	r := newTestRouter(t)
	if w := upload(t, r); w.Code != http.StatusOK {
		t.Fatalf("Run failed: %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/v1/mappings/groups/import", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var groups []domain.MappingGroup
	if err := json.Unmarshal(w.Body.Bytes(), &groups); err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].UnifiedArticle != "G-1" {
		t.Errorf("Unexpected groups %+v", groups)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.local, http://b.local", ""})
	if all || len(origins) != 2 {
		t.Errorf("Unexpected result %v %v", origins, all)
	}
	if _, all := normalizeAllowedOrigins([]string{"*"}); !all {
		t.Errorf("Expected * to allow all origins")
	}
}

func TestRunRemovesUpload(t *testing.T) {
	dir := t.TempDir()
	r := newTestRouterAt(t, dir)

	if w := upload(t, r); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	entries, err := os.ReadDir(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected the upload dir to be empty, got %d files", len(entries))
	}
}

func TestRunFromDataPath(t *testing.T) {
	dir := t.TempDir()
	r := newTestRouterAt(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "orders.xlsx"), workbook(t), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code int
	}{
		{"relative inside data dir", "orders.xlsx", http.StatusOK},
		{"absolute inside data dir", filepath.Join(dir, "orders.xlsx"), http.StatusOK},
		{"parent escape", "../orders.xlsx", http.StatusBadRequest},
		{"absolute outside data dir", filepath.Join(os.TempDir(), "elsewhere.xlsx"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"path": tt.path})
			w := do(r, http.MethodPost, "/api/v1/runs", body, "application/json")
			if w.Code != tt.code {
				t.Errorf("Expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "orders.xlsx")); err != nil {
		t.Errorf("Expected the data file to be kept, got %v", err)
	}
}
