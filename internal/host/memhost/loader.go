package memhost

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"archagent/pkg/agenttypes"
)

// modelFile is the YAML shape of a model seed file.
type modelFile struct {
	Title    string        `yaml:"title"`
	Elements []elementSeed `yaml:"elements"`
}

type elementSeed struct {
	Category   string            `yaml:"category"`
	Name       string            `yaml:"name"`
	Parameters map[string]string `yaml:"parameters"`
}

// LoadModel reads a YAML model seed file and returns a document populated
// with its elements. Seeding happens outside the transaction machinery, the
// way a host loads a file before any add-in runs; the undo history starts
// empty.
func LoadModel(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	var file modelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	if file.Title == "" {
		file.Title = "Untitled"
	}

	doc := NewDocument(file.Title)
	for _, seed := range file.Elements {
		params := seed.Parameters
		if params == nil {
			params = map[string]string{}
		}
		doc.seedElement(agenttypes.Element{
			Category:   seed.Category,
			Name:       seed.Name,
			Parameters: params,
		})
	}
	return doc, nil
}

// seedElement inserts an element without a transaction, for initial load only.
func (d *Document) seedElement(e agenttypes.Element) agenttypes.ElementID {
	e.ID = d.nextID
	d.nextID++
	d.elements[e.ID] = copyElement(e)
	return e.ID
}

// Seed inserts an element without a transaction, for building test fixtures.
func (d *Document) Seed(e agenttypes.Element) agenttypes.ElementID {
	return d.seedElement(e)
}
