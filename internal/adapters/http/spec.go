package http

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

// validateSpec compiles the embedded contract so drift between the YAML and
// the handlers surfaces at startup rather than in a consumer's toolchain.
func validateSpec() error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return fmt.Errorf("load embedded spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("validate embedded spec: %w", err)
	}
	return nil
}
