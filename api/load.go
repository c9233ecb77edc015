package api

import (
	"fmt"
	"os"
	"strconv"

	"go.yaml.in/yaml/v4"

	"github.com/richiexuetang/zodmon/schema"
)

// Document is a declarative API description.
//
//	baseURL: https://api.example.com
//	endpoints:
//	  - method: get
//	    path: /users/:id
//	    alias: getUser
//	    parameters:
//	      - name: id
//	        type: Path
//	        schema: {type: integer}
//	    response:
//	      type: object
//	      properties:
//	        id: {type: integer}
//	        name: {type: string}
//	      required: [id, name]
//	    errors:
//	      - status: 404
//	        schema: {type: object}
//	      - status: default
//
// JSON documents of the same shape are accepted. Schemas decode into
// *schema.Schema.
type Document struct {
	BaseURL   string
	Endpoints []Endpoint
}

type rawDocument struct {
	BaseURL   string        `yaml:"baseURL"`
	Endpoints []rawEndpoint `yaml:"endpoints"`
}

type rawEndpoint struct {
	Method        string         `yaml:"method"`
	Path          string         `yaml:"path"`
	Alias         string         `yaml:"alias"`
	Description   string         `yaml:"description"`
	RequestFormat string         `yaml:"requestFormat"`
	Parameters    []rawParameter `yaml:"parameters"`
	Response      *schema.Schema `yaml:"response"`
	Errors        []rawError     `yaml:"errors"`
}

type rawParameter struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Description string         `yaml:"description"`
	Schema      *schema.Schema `yaml:"schema"`
}

type rawError struct {
	Status      any            `yaml:"status"`
	Description string         `yaml:"description"`
	Schema      *schema.Schema `yaml:"schema"`
}

// ParseDocument decodes a YAML or JSON API description. A document that is a
// bare list is read as the endpoint list.
func ParseDocument(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("api: failed to parse YAML/JSON: %w", err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	var raw rawDocument
	var err error
	switch node.Kind {
	case 0:
		// Empty input.
	case yaml.SequenceNode:
		err = node.Decode(&raw.Endpoints)
	default:
		err = node.Decode(&raw)
	}
	if err != nil {
		return nil, fmt.Errorf("api: failed to parse YAML/JSON: %w", err)
	}

	doc := &Document{BaseURL: raw.BaseURL, Endpoints: make([]Endpoint, 0, len(raw.Endpoints))}
	for i, re := range raw.Endpoints {
		ep, err := re.endpoint()
		if err != nil {
			return nil, fmt.Errorf("api: endpoints[%d]: %w", i, err)
		}
		doc.Endpoints = append(doc.Endpoints, ep)
	}
	return doc, nil
}

// Parse decodes a YAML or JSON API description and checks it.
func Parse(data []byte) ([]Endpoint, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if err := Check(doc.Endpoints); err != nil {
		return nil, err
	}
	return doc.Endpoints, nil
}

// ParseFile is Parse for a file on disk.
func ParseFile(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller chooses the description file
	if err != nil {
		return nil, fmt.Errorf("api: failed to read file: %w", err)
	}
	return Parse(data)
}

func (re rawEndpoint) endpoint() (Endpoint, error) {
	method, err := ParseMethod(re.Method)
	if err != nil {
		return Endpoint{}, err
	}
	ep := Endpoint{
		Method:        method,
		Path:          re.Path,
		Alias:         re.Alias,
		Description:   re.Description,
		RequestFormat: RequestFormat(re.RequestFormat),
	}
	// Typed nils would read as a present schema.
	if re.Response != nil {
		ep.Response = re.Response
	}
	for _, rp := range re.Parameters {
		p := Parameter{Name: rp.Name, Type: ParamType(rp.Type), Description: rp.Description}
		if rp.Schema != nil {
			p.Schema = rp.Schema
		}
		ep.Parameters = append(ep.Parameters, p)
	}
	for _, rerr := range re.Errors {
		status, err := decodeStatus(rerr.Status)
		if err != nil {
			return Endpoint{}, err
		}
		desc := ErrorDescriptor{Status: status, Description: rerr.Description}
		if rerr.Schema != nil {
			desc.Schema = rerr.Schema
		}
		ep.Errors = append(ep.Errors, desc)
	}
	return ep, nil
}

func decodeStatus(v any) (Status, error) {
	switch s := v.(type) {
	case int:
		return ParseStatus(strconv.Itoa(s))
	case uint64:
		return ParseStatus(strconv.FormatUint(s, 10))
	case float64:
		return ParseStatus(strconv.FormatFloat(s, 'f', -1, 64))
	case string:
		return ParseStatus(s)
	case nil:
		return Status{}, fmt.Errorf("missing error status")
	}
	return Status{}, fmt.Errorf("invalid status %v", v)
}
