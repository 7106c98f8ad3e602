package augmentations

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/user/augmentations-api/apperror"
	"github.com/user/augmentations-api/auth"
	"github.com/user/augmentations-api/validation"
)

const (
	// uploadFieldName is the multipart form field carrying the CSV file.
	uploadFieldName = "file"
	// maxUploadSize caps uploads at 8 MiB.
	maxUploadSize = 8 << 20
)

// csvContentTypes are the declared content types accepted for an
// uploaded catalogue file. Browsers are inconsistent here, so the
// classic spreadsheet aliases are allowed alongside text/csv.
var csvContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

// CSVFileFilter rejects uploads that are not CSV files before the
// handler runs: the request must be multipart, carry a "file" part,
// and that part must have a .csv extension and a CSV content type.
// The parsed form stays attached to the request for the handler.
func CSVFileFilter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("request must be multipart/form-data with a file field", err))
			return
		}

		_, header, err := r.FormFile(uploadFieldName)
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("missing file upload field 'file'", err))
			return
		}

		if err := checkCSVHeader(header); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func checkCSVHeader(header *multipart.FileHeader) error {
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		return apperror.NewBadRequestError(fmt.Sprintf("uploaded file must have a .csv extension, got '%s'", header.Filename), nil)
	}

	contentType := header.Header.Get("Content-Type")
	// Strip any parameters, e.g. "text/csv; charset=utf-8".
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if !csvContentTypes[contentType] {
		return apperror.NewBadRequestError(fmt.Sprintf("uploaded file must be text/csv, got '%s'", contentType), nil)
	}
	return nil
}

// csvHeader is the required first line of a catalogue file.
var csvHeader = []string{"name", "type", "area", "activation", "energy_rate", "description"}

// ParseCatalogueCSV reads a catalogue CSV and returns the valid
// augmentations plus per-row errors for the invalid ones. Row numbers
// in errors are 1-based and include the header line. A malformed or
// missing header fails the whole parse.
func ParseCatalogueCSV(reader io.Reader) ([]Augmentation, []RowError, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, apperror.NewBadRequestError("CSV file is empty or unreadable", err)
	}
	for i, col := range csvHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, nil, apperror.NewBadRequestError(
				fmt.Sprintf("unexpected CSV header: want %s", strings.Join(csvHeader, ",")), nil)
		}
	}

	var augs []Augmentation
	var rowErrs []RowError
	rowNum := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		req := CreateAugmentationRequest{
			Name:        strings.TrimSpace(record[0]),
			Type:        strings.TrimSpace(record[1]),
			Area:        strings.TrimSpace(record[2]),
			Activation:  strings.TrimSpace(record[3]),
			EnergyRate:  strings.TrimSpace(record[4]),
			Description: strings.TrimSpace(record[5]),
		}
		if err := validation.Struct(req); err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: rowErrorMessage(err)})
			continue
		}

		augs = append(augs, Augmentation{
			Name:        req.Name,
			Type:        req.Type,
			Area:        req.Area,
			Activation:  req.Activation,
			EnergyRate:  req.EnergyRate,
			Description: req.Description,
		})
	}

	return augs, rowErrs, nil
}

func rowErrorMessage(err error) string {
	appErr, ok := apperror.FromError(err)
	if !ok || len(appErr.Fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(appErr.Fields))
	for field, msg := range appErr.Fields {
		parts = append(parts, field+" "+msg)
	}
	return strings.Join(parts, "; ")
}
