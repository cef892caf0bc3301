// Package datafile loads structured reference-data files into attribute
// mappings. It is a thin collaborator: parsing by file extension (YAML
// by default, JSON for .json), shape validation, and a not-found
// condition for absent paths. Whether the resulting sequence is
// acceptable (non-empty, unique keys) is the caller's concern.
package datafile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/refdata/value"
)

// ErrBadShape marks a file that parsed successfully but does not hold a
// sequence of attribute mappings. Distinct from a parse error so callers
// can tell malformed domain data from a broken file.
var ErrBadShape = errors.New("data file is not a sequence of mappings")

// Load reads and parses the data file at path, returning one attribute
// mapping per record in file order.
//
// A missing path fails with an error satisfying errors.Is(err,
// fs.ErrNotExist). A file whose top-level document is not a sequence of
// mappings fails with ErrBadShape. An empty sequence is returned as-is;
// rejecting it is the caller's decision.
func Load(path string) ([]value.Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("data file not found: %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("read data file %s: %w", path, err)
	}

	var doc any
	switch filepath.Ext(path) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", path, err)
		}
	}

	return convert(path, doc)
}

// convert checks the document shape and converts each element into a
// typed attribute mapping.
func convert(path string, doc any) ([]value.Mapping, error) {
	if doc == nil {
		// An empty document parses to nil; treat as an empty sequence.
		return []value.Mapping{}, nil
	}

	seq, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: top-level %T: %w", path, doc, ErrBadShape)
	}

	out := make([]value.Mapping, 0, len(seq))
	for i, elem := range seq {
		obj, err := asObject(elem)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		m, err := value.MappingFromAny(obj)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// asObject normalizes a decoded sequence element to a string-keyed map.
// JSON numbers arrive as json.Number and are resolved to int or float
// here so value.FromAny sees plain scalars.
func asObject(elem any) (map[string]any, error) {
	obj, ok := elem.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("element %T: %w", elem, ErrBadShape)
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				out[k] = i
			} else if f, err := n.Float64(); err == nil {
				out[k] = f
			} else {
				out[k] = n.String()
			}
			continue
		}
		out[k] = v
	}
	return out, nil
}
