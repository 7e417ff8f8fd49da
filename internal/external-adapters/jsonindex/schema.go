package jsonindex

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	//go:embed library-index.schema.json
	librarySchema []byte

	//go:embed root-index.schema.json
	rootSchema []byte
)

// schemaValidator compiles an embedded schema on first use
type schemaValidator struct {
	url string
	doc []byte

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

func newSchemaValidator(url string, doc []byte) *schemaValidator {
	return &schemaValidator{url: url, doc: doc}
}

func (v *schemaValidator) compile() {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(v.doc))
	if err != nil {
		v.err = Error.New("invalid embedded schema %s: %v", v.url, err)
		return
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(v.url, doc); err != nil {
		v.err = Error.Wrap(err)
		return
	}
	v.schema, v.err = c.Compile(v.url)
	if v.err != nil {
		v.err = Error.Wrap(v.err)
	}
}

func (v *schemaValidator) validate(data []byte) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Error.New("parse error: %v", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return Error.New("schema violation: %v", err)
	}
	return nil
}
