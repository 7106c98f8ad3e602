package augmentations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/augmentations-api/apperror"
	"github.com/user/augmentations-api/auth"
	"github.com/user/augmentations-api/cache"
	"github.com/user/augmentations-api/docgen"
	"github.com/user/augmentations-api/links"
	"github.com/user/augmentations-api/validation"
)

// basePath is the route prefix the handlers are mounted under, used for
// link generation and cache invalidation.
const basePath = "/api/augmentations"

// Handler exposes the augmentation catalogue over HTTP.
type Handler struct {
	service Service
	links   *links.Generator
	pdf     *docgen.PDFGenerator
	cache   *cache.ResponseCache
}

// NewHandler creates a Handler.
func NewHandler(service Service, linkGen *links.Generator, pdf *docgen.PDFGenerator, respCache *cache.ResponseCache) *Handler {
	return &Handler{
		service: service,
		links:   linkGen,
		pdf:     pdf,
		cache:   respCache,
	}
}

// RegisterRoutes mounts the catalogue endpoints on r. Read endpoints
// sit behind the response cache; mutating endpoints require the admin
// role via the supplied middleware.
func (h *Handler) RegisterRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.cache.Middleware)
		r.Get("/", h.HandleList())
		r.Get("/{id}", h.HandleGet())
	})

	r.Get("/export/pdf", h.HandleExportPDF())

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.HandleCreate())
		r.Put("/{id}", h.HandleUpdate())
		r.Delete("/{id}", h.HandleDelete())
		r.With(CSVFileFilter).Post("/upload", h.HandleImportCSV())
	})
}

// HandleList godoc
// @Summary List augmentations
// @Description Returns one page of the augmentation catalogue with pagination links.
// @Tags Augmentations
// @Produce json
// @Security Bearer
// @Param page query int false "Page number (1-based)" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Success 200 {object} augmentations.ListResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations [get]
func (h *Handler) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		pageSize := queryInt(r, "page_size", defaultPageSize)

		items, total, err := h.service.List(r.Context(), page, pageSize)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ListResponse{
			Items:    items,
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			Links:    h.links.PageLinks(r, basePath, page, pageSize, total),
		})
	}
}

// HandleGet godoc
// @Summary Get an augmentation
// @Description Returns a single augmentation with its operation links.
// @Tags Augmentations
// @Produce json
// @Security Bearer
// @Param id path int true "Augmentation ID"
// @Success 200 {object} augmentations.AugmentationResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "Augmentation not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations/{id} [get]
func (h *Handler) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		aug, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, AugmentationResponse{
			Augmentation: *aug,
			Links:        h.links.ResourceLinks(r, basePath, aug.ID),
		})
	}
}

// HandleCreate godoc
// @Summary Create an augmentation
// @Description Adds a new augmentation to the catalogue. Requires the admin role.
// @Tags Augmentations
// @Accept json
// @Produce json
// @Security Bearer
// @Param augmentationBody body augmentations.CreateAugmentationRequest true "Augmentation details"
// @Success 201 {object} augmentations.AugmentationResponse
// @Failure 400 {object} apperror.ErrorResponse "Missing or invalid fields"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 409 {object} apperror.ErrorResponse "Augmentation already exists"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations [post]
func (h *Handler) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAugmentationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validation.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		aug, err := h.service.Create(r.Context(), &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.cache.Invalidate(r.Context(), basePath)
		auth.WriteJSON(w, http.StatusCreated, AugmentationResponse{
			Augmentation: *aug,
			Links:        h.links.ResourceLinks(r, basePath, aug.ID),
		})
	}
}

// HandleUpdate godoc
// @Summary Update an augmentation
// @Description Partially updates an augmentation. Omitted fields are unchanged. Requires the admin role.
// @Tags Augmentations
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Augmentation ID"
// @Param augmentationBody body augmentations.UpdateAugmentationRequest true "Fields to update"
// @Success 200 {object} augmentations.AugmentationResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid fields"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "Augmentation not found"
// @Failure 409 {object} apperror.ErrorResponse "Name already taken"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations/{id} [put]
func (h *Handler) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req UpdateAugmentationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validation.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		aug, err := h.service.Update(r.Context(), id, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.cache.Invalidate(r.Context(), basePath)
		auth.WriteJSON(w, http.StatusOK, AugmentationResponse{
			Augmentation: *aug,
			Links:        h.links.ResourceLinks(r, basePath, aug.ID),
		})
	}
}

// HandleDelete godoc
// @Summary Delete an augmentation
// @Description Removes an augmentation from the catalogue. Requires the admin role.
// @Tags Augmentations
// @Produce json
// @Security Bearer
// @Param id path int true "Augmentation ID"
// @Success 204 "Deleted"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} apperror.ErrorResponse "Augmentation not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations/{id} [delete]
func (h *Handler) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.cache.Invalidate(r.Context(), basePath)
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleImportCSV godoc
// @Summary Import augmentations from CSV
// @Description Bulk-imports augmentations from an uploaded CSV file (columns: name,type,area,activation,energy_rate,description). The upload must be a .csv file with a CSV content type. Requires the admin role.
// @Tags Augmentations
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Param file formData file true "Catalogue CSV file"
// @Success 200 {object} augmentations.ImportResult
// @Failure 400 {object} apperror.ErrorResponse "Not a CSV upload, or no valid rows"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Insufficient permissions"
// @Failure 409 {object} apperror.ErrorResponse "Duplicate augmentation in file"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations/upload [post]
func (h *Handler) HandleImportCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// CSVFileFilter has already parsed and vetted the form.
		file, _, err := r.FormFile(uploadFieldName)
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("missing file upload field 'file'", err))
			return
		}
		defer file.Close()

		result, err := h.service.ImportCSV(r.Context(), file)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.cache.Invalidate(r.Context(), basePath)
		auth.WriteJSON(w, http.StatusOK, result)
	}
}

// HandleExportPDF godoc
// @Summary Export the catalogue as PDF
// @Description Streams the full augmentation catalogue as a PDF document.
// @Tags Augmentations
// @Produce application/pdf
// @Security Bearer
// @Success 200 {file} file "PDF document"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/augmentations/export/pdf [get]
func (h *Handler) HandleExportPDF() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.service.All(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		entries := make([]docgen.CatalogueEntry, len(items))
		for i, aug := range items {
			entries[i] = docgen.CatalogueEntry{
				Name:        aug.Name,
				Type:        aug.Type,
				Area:        aug.Area,
				Activation:  aug.Activation,
				EnergyRate:  aug.EnergyRate,
				Description: aug.Description,
			}
		}

		pdfBytes, err := h.pdf.Catalogue(entries)
		if err != nil {
			auth.WriteError(w, r, apperror.NewInternalError("failed to generate PDF", err))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="augmentations.pdf"`)
		w.WriteHeader(http.StatusOK)
		w.Write(pdfBytes)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid augmentation ID", err))
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
