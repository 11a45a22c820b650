package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData(OpenAPISpec())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	return doc
}

func TestOpenAPISpec_CoversRoutes(t *testing.T) {
	doc := loadSpec(t)

	handler := NewHandler(newTestManager(t))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, OpenAPISpec(), w.Body.Bytes())

	r := chi.NewRouter()
	(&Server{Manager: newTestManager(t)}).mount(r)

	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if route == "/openapi.yaml" {
			return nil
		}
		item := doc.Paths.Value(route)
		if assert.NotNil(t, item, "route %s is not documented", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestOpenAPISpec_StatusCodesMatchStatusFor(t *testing.T) {
	doc := loadSpec(t)
	op := doc.Paths.Value("/journey/back").Post
	require.NotNil(t, op)
	assert.NotNil(t, op.Responses.Value("409"), "cannot go back maps to 409")
}
