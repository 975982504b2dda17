package portfolio

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/allocation/internal/contracts"
)

//go:embed sample.yaml
var sampleYAML []byte

// Document is the on-disk YAML form of a portfolio
type Document struct {
	Title       string                 `json:"title" yaml:"title"`
	RiskLabel   string                 `json:"risk_label" yaml:"risk_label"`
	Goal        string                 `json:"goal" yaml:"goal"`
	Intro       string                 `json:"intro" yaml:"intro"`
	Instruments []contracts.Instrument `json:"instruments" yaml:"instruments"`
}

// Load reads a YAML file and returns the Document with its raw bytes
func Load(path string) (*Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read portfolio: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("parse portfolio %s: %w", path, err)
	}
	return doc, data, nil
}

// Parse decodes YAML; unknown fields are rejected so typos fail loudly.
// An empty or comment-only input decodes to an empty Document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, &ParseError{Err: err}
	}
	return &doc, nil
}

// DefaultDocument returns the embedded sample portfolio
func DefaultDocument() (*Document, error) {
	doc, err := Parse(sampleYAML)
	if err != nil {
		return nil, fmt.Errorf("parse embedded sample: %w", err)
	}
	return doc, nil
}

// Hash returns the SHA-256 of the document's canonical JSON
func Hash(doc *Document) (string, error) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
