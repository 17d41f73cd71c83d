package linker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedMap is an externally supplied keyword-to-target mapping merged into the
// index before any keywords are mined from posts. Keyword order is preserved
// from the file.
type SeedMap struct {
	entries  map[string][]Target
	keywords []string
}

// EmptySeed returns a seed map with no entries.
func EmptySeed() SeedMap {
	return SeedMap{entries: make(map[string][]Target)}
}

// LoadSeed reads a YAML seed file mapping keywords to target lists:
//
//	マーケティング:
//	  - url: /marketing-basics/
//	    title: マーケティング入門
//
// A missing or malformed file is not fatal: an empty seed map is returned
// together with the error so the caller can log and continue.
func LoadSeed(path string) (SeedMap, error) {
	if path == "" {
		return EmptySeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptySeed(), nil
		}
		return EmptySeed(), fmt.Errorf("linker: read seed file %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return EmptySeed(), fmt.Errorf("linker: parse seed file %s: %w", path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return EmptySeed(), nil
	}

	// Decode through the node API to keep the file's keyword order, which a
	// plain map unmarshal would lose.
	seed := EmptySeed()
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		var targets []Target
		if err := valNode.Decode(&targets); err != nil {
			continue
		}
		kw := keyNode.Value
		if kw == "" || len(targets) == 0 {
			continue
		}
		if _, dup := seed.entries[kw]; !dup {
			seed.keywords = append(seed.keywords, kw)
		}
		seed.entries[kw] = append(seed.entries[kw], targets...)
	}
	return seed, nil
}
