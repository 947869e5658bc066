package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Info holds metadata about an existing archive file.
type Info struct {
	Path      string // Full filesystem path
	Filename  string // Base filename
	Size      int64  // File size in bytes
	Timestamp string // From manifest, or file mod time
	WorldName string // From manifest
	Objects   int    // From manifest
}

// List returns metadata for every archive in a directory, newest-first.
// A missing directory is treated as empty.
func List(archiveDir string) ([]Info, error) {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: read dir %s: %w", archiveDir, err)
	}

	var archives []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tar.gz") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(archiveDir, e.Name())
		ai := Info{
			Path:     path,
			Filename: e.Name(),
			Size:     fi.Size(),
		}
		if m, err := readManifest(path); err == nil {
			ai.Timestamp = m.Timestamp
			ai.WorldName = m.WorldName
			ai.Objects = m.Objects
		} else {
			// No readable manifest; fall back to filesystem metadata.
			ai.Timestamp = fi.ModTime().Format("2006-01-02 15:04:05")
		}
		archives = append(archives, ai)
	}

	// RFC3339 timestamps sort lexically
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp > archives[j].Timestamp
	})
	return archives, nil
}

// readManifest scans a .tar.gz for its manifest entry and decodes it.
func readManifest(archivePath string) (*Manifest, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		switch {
		case err == io.EOF:
			return nil, fmt.Errorf("archive: %s carries no %s", filepath.Base(archivePath), manifestName)
		case err != nil:
			return nil, err
		case hdr.Name != manifestName:
			continue
		}
		var m Manifest
		if err := json.NewDecoder(tr).Decode(&m); err != nil {
			return nil, err
		}
		return &m, nil
	}
}
