package augmentations

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCSV = `name,type,area,activation,energy_rate,description
Glass-Shield Cloaking,Dermal,Skin,Manual,High,Renders the agent invisible
Combat Strength,Arm,Arms,Automatic,Low,Boosts melee damage
`

// multipartBody builds a multipart form with one file part using the
// given filename and content type.
func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func serveThroughFilter(t *testing.T, filename, contentType, content string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	var reached bool
	handler := CSVFileFilter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	body, formContentType := multipartBody(t, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/api/augmentations/upload", body)
	req.Header.Set("Content-Type", formContentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, reached
}

func TestCSVFileFilterAcceptsCSV(t *testing.T) {
	rec, reached := serveThroughFilter(t, "augs.csv", "text/csv", validCSV)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestCSVFileFilterAcceptsCharsetParameter(t *testing.T) {
	rec, reached := serveThroughFilter(t, "augs.csv", "text/csv; charset=utf-8", validCSV)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestCSVFileFilterRejectsWrongExtension(t *testing.T) {
	rec, reached := serveThroughFilter(t, "augs.txt", "text/csv", validCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, reached)
}

func TestCSVFileFilterRejectsWrongContentType(t *testing.T) {
	rec, reached := serveThroughFilter(t, "augs.csv", "application/json", validCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, reached)
}

func TestCSVFileFilterRejectsNonMultipart(t *testing.T) {
	var reached bool
	handler := CSVFileFilter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/augmentations/upload", strings.NewReader(validCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, reached)
}

func TestCSVFileFilterRejectsMissingFileField(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("notafile", "value"))
	require.NoError(t, writer.Close())

	var reached bool
	handler := CSVFileFilter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/augmentations/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, reached)
}

func TestParseCatalogueCSV(t *testing.T) {
	augs, rowErrs, err := ParseCatalogueCSV(strings.NewReader(validCSV))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, augs, 2)
	assert.Equal(t, "Glass-Shield Cloaking", augs[0].Name)
	assert.Equal(t, "Automatic", augs[1].Activation)
}

func TestParseCatalogueCSVBadHeader(t *testing.T) {
	csv := "wrong,header,entirely,for,this,file\nA,B,C,Manual,Low,d\n"
	_, _, err := ParseCatalogueCSV(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestParseCatalogueCSVEmptyFile(t *testing.T) {
	_, _, err := ParseCatalogueCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseCatalogueCSVReportsBadRows(t *testing.T) {
	csv := `name,type,area,activation,energy_rate,description
Good Aug,Arm,Arms,Manual,Low,fine
,Arm,Arms,Manual,Low,missing name
Bad Activation,Arm,Arms,SometimesMaybe,Low,invalid enum
`
	augs, rowErrs, err := ParseCatalogueCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, augs, 1)
	assert.Equal(t, "Good Aug", augs[0].Name)

	require.Len(t, rowErrs, 2)
	// Row numbers are 1-based including the header line.
	assert.Equal(t, 3, rowErrs[0].Row)
	assert.Equal(t, 4, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Message, "activation")
}
