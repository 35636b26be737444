package mcpserver

import (
	"encoding/json"
	"fmt"

	"formfill-agent/internal/domain/entity"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"
)

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func fieldsSchema() *jsonschema.Schema {
	pair := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"key":   stringProp("Field name, label or placeholder"),
			"value": stringProp("Value to type or option to select"),
		},
		Required: []string{"key", "value"},
	}
	return &jsonschema.Schema{
		Description: "Field values in fill order. Either an object or an array of {key, value} pairs.",
		AnyOf: []*jsonschema.Schema{
			{Type: "object", AdditionalProperties: &jsonschema.Schema{Type: "string"}},
			{Type: "array", Items: pair},
		},
	}
}

func requestSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"url":               stringProp("Absolute URL of the page holding the form"),
			"fields":            fieldsSchema(),
			"submit_selector":   stringProp("CSS or XPath selector of the submit control"),
			"submit_text":       stringProp("Visible text of the submit control"),
			"check_selector":    stringProp("Selector that must exist after submission"),
			"must_contain_text": stringProp("Text that must appear on the page after submission"),
			"wait_after_submit_seconds": {
				Type:        "integer",
				Description: "Seconds to wait for the page to settle after submitting",
				Minimum:     ptr.To(1.0),
				Default:     json.RawMessage(fmt.Sprint(entity.DefaultWaitAfterSubmitSeconds)),
			},
			"model": {
				Type:        "string",
				Description: "Model that drives the browser agent",
				Default:     json.RawMessage(fmt.Sprintf("%q", entity.DefaultModel)),
			},
			"headless": {
				Type:    "boolean",
				Default: json.RawMessage("true"),
			},
			"use_cloud_browser": {
				Type:    "boolean",
				Default: json.RawMessage("false"),
			},
			"timeout_seconds": {
				Type:        "integer",
				Description: "Wall-clock limit for the whole run",
				Minimum:     ptr.To(1.0),
				Default:     json.RawMessage(fmt.Sprint(entity.DefaultTimeoutSeconds)),
			},
		},
		Required: []string{"url"},
	}
}

func transcriptSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"transcript": {
				Type:        "array",
				Description: "Agent history records, oldest first. Records with action/note keys are read as steps; anything else is kept as text.",
			},
			"model": stringProp("Model name echoed in the response"),
		},
		Required: []string{"transcript"},
	}
}
