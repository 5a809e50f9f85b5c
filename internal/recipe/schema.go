package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Schema is the JSON Schema (Draft 2020-12) for recipe files. YAML
// recipes are converted to JSON before validation.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/edareport/recipe.schema.json",
  "title": "edareport Recipe",
  "description": "Input schema for edareport build",
  "type": "object",
  "required": ["meta", "steps"],
  "additionalProperties": false,
  "properties": {
    "meta": {
      "type": "object",
      "required": ["title"],
      "additionalProperties": false,
      "properties": {
        "title": { "type": "string", "minLength": 1 },
        "author": { "type": "string" },
        "data_source": { "type": "string" },
        "objective": { "type": "string" }
      }
    },
    "output": {
      "type": "string",
      "minLength": 1,
      "description": "Report path, relative to the recipe file"
    },
    "datasets": {
      "type": "object",
      "additionalProperties": { "type": "string", "pattern": "\\.(csv|tsv|tab|json)$" }
    },
    "steps": {
      "type": "array",
      "items": { "$ref": "#/$defs/Step" }
    }
  },
  "$defs": {
    "Step": {
      "type": "object",
      "minProperties": 1,
      "maxProperties": 1,
      "additionalProperties": false,
      "properties": {
        "section": {
          "oneOf": [
            { "type": "string", "minLength": 1 },
            { "$ref": "#/$defs/Section" }
          ]
        },
        "markdown": {
          "oneOf": [
            { "type": "string" },
            { "$ref": "#/$defs/Markdown" }
          ]
        },
        "dataframe": { "$ref": "#/$defs/Dataframe" },
        "countplot": { "$ref": "#/$defs/CardGrid" },
        "donut": { "$ref": "#/$defs/CardGrid" },
        "histogram": { "$ref": "#/$defs/CardGrid" },
        "box": { "$ref": "#/$defs/CardGrid" },
        "violin": { "$ref": "#/$defs/CardGrid" },
        "pairplot": { "$ref": "#/$defs/StaticGrid" },
        "histoplot": { "$ref": "#/$defs/StaticGrid" },
        "boxplot": { "$ref": "#/$defs/StaticGrid" },
        "densityplot": { "$ref": "#/$defs/StaticGrid" },
        "histogram_figure": { "$ref": "#/$defs/Figure" },
        "violin_figure": { "$ref": "#/$defs/Figure" },
        "histogram_subplots": { "$ref": "#/$defs/Subplots" },
        "violin_subplots": { "$ref": "#/$defs/Subplots" },
        "row": { "$ref": "#/$defs/Row" }
      }
    },
    "Section": {
      "type": "object",
      "required": ["text"],
      "additionalProperties": false,
      "properties": {
        "text": { "type": "string", "minLength": 1 },
        "level": { "type": "integer", "minimum": 1, "maximum": 5 },
        "icon": { "type": "string" }
      }
    },
    "Markdown": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "text": { "type": "string" },
        "file": { "type": "string", "minLength": 1 },
        "card": { "type": "boolean" }
      },
      "oneOf": [
        { "required": ["text"] },
        { "required": ["file"] }
      ]
    },
    "Dataframe": {
      "type": "object",
      "required": ["dataset"],
      "additionalProperties": false,
      "properties": {
        "dataset": { "type": "string", "minLength": 1 },
        "title": { "type": "string" },
        "max_rows": { "type": "integer" },
        "max_height": { "type": "integer", "minimum": 0 },
        "explanation": { "type": "string" }
      }
    },
    "Columns": {
      "type": "array",
      "items": { "type": "string" }
    },
    "CardGrid": {
      "type": "object",
      "required": ["dataset"],
      "additionalProperties": false,
      "properties": {
        "dataset": { "type": "string", "minLength": 1 },
        "title": { "type": "string" },
        "include": { "$ref": "#/$defs/Columns" },
        "exclude": { "$ref": "#/$defs/Columns" },
        "max_count": { "type": "integer", "minimum": 0 },
        "max_categories": { "type": "integer", "minimum": 0 },
        "width": { "type": "integer", "minimum": 0 },
        "height": { "type": "integer", "minimum": 0 },
        "class": { "type": "string" }
      }
    },
    "StaticGrid": {
      "type": "object",
      "required": ["dataset"],
      "additionalProperties": false,
      "properties": {
        "dataset": { "type": "string", "minLength": 1 },
        "title": { "type": "string" },
        "include": { "$ref": "#/$defs/Columns" },
        "exclude": { "$ref": "#/$defs/Columns" },
        "max_plots": { "type": "integer", "minimum": 0 },
        "columns_per_row": { "type": "integer", "minimum": 1 },
        "width": { "type": "integer", "minimum": 0 },
        "height": { "type": "integer", "minimum": 0 },
        "bin_step": { "type": "number", "exclusiveMinimum": 0 }
      }
    },
    "Figure": {
      "type": "object",
      "required": ["dataset"],
      "additionalProperties": false,
      "properties": {
        "dataset": { "type": "string", "minLength": 1 },
        "column": { "type": "string" },
        "bins": { "type": "integer", "minimum": 0 },
        "width": { "type": "integer", "minimum": 0 },
        "height": { "type": "integer", "minimum": 0 },
        "explanation": { "type": "string" }
      }
    },
    "Subplots": {
      "type": "object",
      "required": ["dataset"],
      "additionalProperties": false,
      "properties": {
        "dataset": { "type": "string", "minLength": 1 },
        "max_cols_per_row": { "type": "integer", "minimum": 1 },
        "width": { "type": "integer", "minimum": 0 },
        "row_height": { "type": "integer", "minimum": 0 },
        "explanation": { "type": "string" }
      }
    },
    "Row": {
      "type": "object",
      "required": ["steps"],
      "additionalProperties": false,
      "properties": {
        "classes": { "$ref": "#/$defs/Columns" },
        "steps": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/$defs/Step" }
        }
      }
    }
  }
}`

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("recipe.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("recipe.schema.json")
})

// Validate checks a YAML recipe against Schema.
func Validate(data []byte) error {
	sch, err := compiled()
	if err != nil {
		return fmt.Errorf("compiling recipe schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing recipe: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parsing recipe: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parsing recipe: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid recipe: %w", err)
	}
	return nil
}
