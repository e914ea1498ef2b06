// Package seed reads the static character seed file used by import.
//
// The file is a JSON array of objects. Each element is decoded as relaxed
// MongoDB Extended JSON so integers stay integers in the store and any
// attribute the model does not name is preserved verbatim.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"potterdex/internal/character/models"
)

// Loader reads seed records from a fixed path.
type Loader struct {
	path string
}

// NewLoader creates a Loader for path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load opens and parses the seed file. The file is read fresh on each call.
func (l *Loader) Load() ([]models.Character, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", l.path, err)
	}
	return records, nil
}

// Parse decodes a JSON array of character objects.
func Parse(r io.Reader) ([]models.Character, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed array: %w", err)
	}

	records := make([]models.Character, 0, len(raw))
	for i, elem := range raw {
		var c models.Character
		if err := bson.UnmarshalExtJSON(elem, false, &c); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, c)
	}
	return records, nil
}
