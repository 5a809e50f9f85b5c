package report

// Schema is the JSON Schema (Draft 2020-12) for the report outline
// JSON output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/edareport/outline.schema.json",
  "title": "edareport Outline",
  "description": "Output schema for edareport build/outline --format=json",
  "type": "object",
  "required": ["version", "fragments", "metadata"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Tool version"
    },
    "fragments": {
      "type": "array",
      "items": { "$ref": "#/$defs/Fragment" }
    },
    "metadata": { "$ref": "#/$defs/Metadata" }
  },
  "$defs": {
    "Fragment": {
      "type": "object",
      "required": ["id", "index", "kind", "family", "bytes"],
      "properties": {
        "id": {
          "type": "string",
          "pattern": "^fr-[0-9a-f]{8}$",
          "description": "Stable identifier (fr-XXXXXXXX)"
        },
        "index": {
          "type": "integer",
          "minimum": 0,
          "description": "Zero-based position in the document"
        },
        "kind": {
          "type": "string",
          "enum": [
            "banner", "section", "row", "column",
            "table", "markdown", "chart", "html",
            "countplot", "donut", "histogram", "box", "violin",
            "pairplot", "histoplot", "boxplot", "densityplot"
          ]
        },
        "family": {
          "type": "string",
          "enum": ["structure", "content", "card-grid", "composite"]
        },
        "title": { "type": "string" },
        "level": {
          "type": "integer",
          "minimum": 1,
          "maximum": 5,
          "description": "Section level"
        },
        "cards": {
          "type": "integer",
          "minimum": 1,
          "description": "Cards in a grid fragment"
        },
        "bytes": {
          "type": "integer",
          "minimum": 0
        }
      }
    },
    "Metadata": {
      "type": "object",
      "required": ["version", "path", "duration_ms"],
      "properties": {
        "version": { "type": "string" },
        "path": { "type": "string" },
        "timestamp": {
          "type": "string",
          "format": "date-time"
        },
        "duration_ms": {
          "type": "integer",
          "description": "Build duration in milliseconds"
        },
        "warnings": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ]
        }
      }
    }
  }
}`
