package features

import (
	"slices"

	"github.com/toolcrib/vbwear/internal/utils/category"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
)

// SchemaFor derives the feature schema of a feature spec.
func SchemaFor(spec config.FeatureSpec) (core.FeatureSchema, error) {
	if err := spec.Validate(); err != nil {
		return core.FeatureSchema{}, err
	}
	enc, err := category.Encoding{
		Field:      spec.CategoricalField,
		Categories: spec.Categories,
		Prefix:     spec.IndicatorPrefix,
	}.Normalize()
	if err != nil {
		return core.FeatureSchema{}, err
	}
	numeric := slices.Clone(spec.NumericFields)
	return core.FeatureSchema{
		Version:          core.FeatureSchemaVersion,
		Target:           spec.Target,
		NumericFields:    numeric,
		CategoricalField: enc.Field,
		Categories:       enc.Categories,
		Columns:          append(slices.Clone(numeric), enc.Columns()...),
	}, nil
}

func encodingOf(schema core.FeatureSchema) category.Encoding {
	return category.Encoding{Field: schema.CategoricalField, Categories: schema.Categories}
}
