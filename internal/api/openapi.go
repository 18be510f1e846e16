package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	specOnce sync.Once
	spec     *openapi3.T
	specErr  error
)

// Spec returns the parsed and validated OpenAPI document describing the
// /api/v1 routes.
func Spec() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiYAML)
		if err != nil {
			specErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			specErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		spec = doc
	})
	return spec, specErr
}

// ServeSpec writes the OpenAPI document as JSON.
func ServeSpec(w http.ResponseWriter, _ *http.Request) {
	doc, err := Spec()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
