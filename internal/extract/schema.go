package extract

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sells-group/company-intel/internal/model"
)

//go:embed schema.json
var pageRecordSchema string

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	errSchema      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, errSchema = gojsonschema.NewSchema(gojsonschema.NewStringLoader(pageRecordSchema))
	})
	return compiledSchema, errSchema
}

// ValidateShape checks that doc matches the PageRecord JSON shape. Missing
// fields and nulls are allowed; wrong types are not.
func ValidateShape(doc string) error {
	schema, err := loadSchema()
	if err != nil {
		return eris.Wrap(err, "extract: load schema")
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return eris.Wrapf(model.ErrExtraction, "extract: response is not json: %v", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return eris.Wrapf(model.ErrExtraction, "extract: schema mismatch: %s", strings.Join(msgs, "; "))
}
