package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/matzehuels/roadnet/pkg/geo"
)

// Keyer generates cache keys.
type Keyer interface {
	// GraphKey identifies a road graph fetched for a bounding box.
	GraphKey(b geo.Bounds, opts GraphKeyOpts) string

	// ResultKey identifies a simplified graph derived from the graph whose
	// content hash is graphHash.
	ResultKey(graphHash string, opts ResultKeyOpts) string
}

// GraphKeyOpts holds the fetch options that change a fetched graph.
type GraphKeyOpts struct {
	OnlyRoads bool `json:"only_roads"`
}

// ResultKeyOpts holds the transform options that change a result.
type ResultKeyOpts struct {
	Component string `json:"component"`
	Root      string `json:"root,omitempty"`
	Parallel  string `json:"parallel"`
}

// DefaultKeyer hashes the key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey returns "graph:<hash>" over the bbox in its OSM API string form.
func (DefaultKeyer) GraphKey(b geo.Bounds, opts GraphKeyOpts) string {
	return KeyTypeGraph + ":" + hashJSON(b.String(), opts)
}

// ResultKey returns "result:<hash>".
func (DefaultKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	return KeyTypeResult + ":" + hashJSON(graphHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashJSON hashes the JSON encoding of parts. The key structs only hold
// strings and bools, which always encode.
func hashJSON(parts ...any) string {
	data, _ := json.Marshal(parts)
	return Hash(data)
}
