package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerInfo(t *testing.T) {
	assert.Equal(t, "AugmentationsAPI", SwaggerInfo.Title)
	assert.Equal(t, "v1", SwaggerInfo.Version)
}

func TestDocTemplateIsValidJSON(t *testing.T) {
	// The template placeholders are not JSON; substitute them the way
	// swag does before parsing.
	rendered := SwaggerInfo.ReadDoc()

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rendered), &doc))

	security, ok := doc["securityDefinitions"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, security, "Bearer")

	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	for _, p := range []string{
		"/api/augmentations",
		"/api/augmentations/{id}",
		"/api/augmentations/upload",
		"/api/augmentations/export/pdf",
		"/auth/register",
		"/auth/login",
		"/auth/refresh",
	} {
		assert.Contains(t, paths, p)
	}
}

func TestDocTemplateDocumentsBearerScheme(t *testing.T) {
	assert.True(t, strings.Contains(docTemplate, `"in": "header"`))
	assert.True(t, strings.Contains(docTemplate, `"name": "Authorization"`))
}
