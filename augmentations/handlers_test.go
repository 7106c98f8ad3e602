package augmentations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/augmentations-api/apperror"
	"github.com/user/augmentations-api/cache"
	"github.com/user/augmentations-api/docgen"
	"github.com/user/augmentations-api/links"
)

// fakeService counts calls so handler tests can verify validation runs
// before the business logic.
type fakeService struct {
	items []Augmentation

	createCalls int
	updateCalls int
	deleteCalls int
	importCalls int

	err error
}

func (s *fakeService) List(_ context.Context, page, pageSize int) ([]Augmentation, int, error) {
	return s.items, len(s.items), s.err
}

func (s *fakeService) Get(_ context.Context, id int) (*Augmentation, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, apperror.NewNotFoundError("augmentation not found", nil)
}

func (s *fakeService) Create(_ context.Context, req *CreateAugmentationRequest) (*Augmentation, error) {
	s.createCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &Augmentation{ID: 1, Name: req.Name, Type: req.Type, Area: req.Area,
		Activation: req.Activation, EnergyRate: req.EnergyRate, Description: req.Description,
		CreatedAt: time.Now()}, nil
}

func (s *fakeService) Update(_ context.Context, id int, _ *UpdateAugmentationRequest) (*Augmentation, error) {
	s.updateCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.Get(context.Background(), id)
}

func (s *fakeService) Delete(_ context.Context, id int) error {
	s.deleteCalls++
	if s.err != nil {
		return s.err
	}
	_, err := s.Get(context.Background(), id)
	return err
}

func (s *fakeService) ImportCSV(_ context.Context, file io.Reader) (*ImportResult, error) {
	s.importCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &ImportResult{BatchID: uuid.New(), Imported: 2}, nil
}

func (s *fakeService) All(_ context.Context) ([]Augmentation, error) {
	return s.items, s.err
}

// passthroughAdmin stands in for the role middleware; authorization has
// its own tests.
func passthroughAdmin(next http.Handler) http.Handler {
	return next
}

func newTestRouter(svc Service) chi.Router {
	h := NewHandler(svc, links.NewGenerator(), docgen.NewPDFGenerator("Augmentation Catalogue"),
		cache.NewResponseCache(nil, time.Minute))

	r := chi.NewRouter()
	r.Route(basePath, func(r chi.Router) {
		h.RegisterRoutes(r, passthroughAdmin)
	})
	return r
}

func sampleItems() []Augmentation {
	return []Augmentation{
		{ID: 1, Name: "Glass-Shield Cloaking", Type: "Dermal", Area: "Skin", Activation: "Manual", EnergyRate: "High"},
		{ID: 2, Name: "Combat Strength", Type: "Arm", Area: "Arms", Activation: "Automatic", EnergyRate: "Low"},
	}
}

func TestHandleListReturnsPage(t *testing.T) {
	router := newTestRouter(&fakeService{items: sampleItems()})

	req := httptest.NewRequest(http.MethodGet, "/api/augmentations?page=1&page_size=20", nil)
	req.Host = "api.example.com"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Total)
	require.NotEmpty(t, resp.Links)
	assert.Equal(t, "self", resp.Links[0].Rel)
	assert.Contains(t, resp.Links[0].Href, "http://api.example.com/api/augmentations")
}

func TestHandleGetFound(t *testing.T) {
	router := newTestRouter(&fakeService{items: sampleItems()})

	req := httptest.NewRequest(http.MethodGet, "/api/augmentations/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AugmentationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Glass-Shield Cloaking", resp.Name)
	assert.Len(t, resp.Links, 3)
}

func TestHandleGetNotFound(t *testing.T) {
	router := newTestRouter(&fakeService{items: sampleItems()})

	req := httptest.NewRequest(http.MethodGet, "/api/augmentations/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetRejectsBadID(t *testing.T) {
	router := newTestRouter(&fakeService{items: sampleItems()})

	req := httptest.NewRequest(http.MethodGet, "/api/augmentations/banana", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateValidatesBeforeService(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"name": "", "type": "Arm", "area": "Arms", "activation": "Manual", "energy_rate": "Low"}`
	req := httptest.NewRequest(http.MethodPost, "/api/augmentations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.createCalls)

	var resp apperror.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "name")
}

func TestHandleCreateRejectsUnknownActivation(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"name": "X", "type": "Arm", "area": "Arms", "activation": "Sometimes", "energy_rate": "Low"}`
	req := httptest.NewRequest(http.MethodPost, "/api/augmentations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.createCalls)
}

func TestHandleCreateSuccess(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"name": "Aggressive Defense System", "type": "Cranial", "area": "Head", "activation": "Automatic", "energy_rate": "Moderate", "description": "Destroys incoming projectiles"}`
	req := httptest.NewRequest(http.MethodPost, "/api/augmentations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, svc.createCalls)

	var resp AugmentationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.ID)
	assert.Len(t, resp.Links, 3)
}

func TestHandleUpdatePartialBody(t *testing.T) {
	svc := &fakeService{items: sampleItems()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/augmentations/1", strings.NewReader(`{"description": "updated"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.updateCalls)
}

func TestHandleDelete(t *testing.T) {
	svc := &fakeService{items: sampleItems()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/augmentations/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, svc.deleteCalls)
}

func TestHandleDeleteNotFound(t *testing.T) {
	svc := &fakeService{items: sampleItems()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/augmentations/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleImportCSVThroughFilter(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, "augs.csv", "text/csv", validCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/augmentations/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.importCalls)

	var result ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 2, result.Imported)
}

func TestHandleImportCSVFilterBlocksNonCSV(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, "augs.json", "application/json", `[]`)
	req := httptest.NewRequest(http.MethodPost, "/api/augmentations/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.importCalls, "the filter must reject before the handler runs")
}

func TestHandleExportPDF(t *testing.T) {
	router := newTestRouter(&fakeService{items: sampleItems()})

	req := httptest.NewRequest(http.MethodGet, "/api/augmentations/export/pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "augmentations.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}
