package export

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one artifact in the run manifest.
type ManifestEntry struct {
	Name      string     `json:"name"`
	Format    string     `json:"format"`
	DesignIDs []string   `json:"design_ids"`
	Pages     []PageSize `json:"pages,omitempty"`
	Bytes     int64      `json:"bytes"`
}

// Manifest is written next to the artifacts of a run.
type Manifest struct {
	RunID     string          `json:"run_id"`
	Artifacts []ManifestEntry `json:"artifacts"`
}

// NewManifest summarizes a result.
func NewManifest(res *Result) Manifest {
	m := Manifest{RunID: res.RunID, Artifacts: make([]ManifestEntry, len(res.Artifacts))}
	for i, a := range res.Artifacts {
		m.Artifacts[i] = ManifestEntry{
			Name:      a.Name,
			Format:    string(a.Format),
			DesignIDs: a.DesignIDs,
			Pages:     a.Pages,
			Bytes:     a.Bytes,
		}
	}
	return m
}

// WriteManifest writes manifest.json for res to path.
func WriteManifest(path string, res *Result) error {
	data, err := json.MarshalIndent(NewManifest(res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
