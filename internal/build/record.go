package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/lwipbuild/internal/target"
)

// Output directory layout:
//
//	outDir/
//	  .lock          # held for the duration of a run
//	  .build.json    # record of the last successful run
//	  liblwip.a
//	  obj/           # objects, mirroring source paths
const recordFile = ".build.json"

// Record describes the last successful build in an output directory.
type Record struct {
	Target    target.Target `json:"target"`
	LwIP      string        `json:"lwip,omitempty"`
	Includes  []string      `json:"includes"`
	Archive   string        `json:"archive"`
	Bindings  string        `json:"bindings"`
	BuildTime time.Time     `json:"build_time"`
}

// LoadRecord reads the record in outDir.
func LoadRecord(outDir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(outDir, recordFile))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func saveRecord(outDir string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, recordFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
