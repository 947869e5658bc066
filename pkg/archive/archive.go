// Package archive creates and restores world backups: a tar.gz holding a
// bolt snapshot, an optional flatfile export, and a manifest with SHA-256
// checksums for every entry.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// manifestName is the tar entry holding the archive manifest.
const manifestName = "manifest.json"

// Manifest describes the contents of an archive.
type Manifest struct {
	Version   int                  `json:"version"`
	Server    string               `json:"server"`
	Timestamp string               `json:"timestamp"`
	WorldName string               `json:"world_name"`
	Objects   int                  `json:"objects"`
	Files     map[string]FileEntry `json:"files"`
}

// FileEntry describes a single file within the archive.
type FileEntry struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
	Type   string `json:"type"` // "bolt" or "flat"
}

// Params holds all inputs needed to create an archive.
type Params struct {
	SnapshotFunc func(destPath string) error // Caller provides bolt snapshot closure
	FlatfilePath string                      // Flatfile export to include (empty = skip)
	ArchiveDir   string                      // Output directory for the archive
	WorldName    string                      // World name for manifest
	ObjectCount  int                         // Number of objects for manifest
}

// Create writes a .tar.gz archive of the world data and returns the
// archive path.
func Create(params Params) (string, error) {
	if err := os.MkdirAll(params.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("archive: create dir %s: %w", params.ArchiveDir, err)
	}

	filename := fmt.Sprintf("archive-%s.tar.gz", time.Now().Format("20060102-150405"))
	archivePath := filepath.Join(params.ArchiveDir, filename)

	tmpDir, err := os.MkdirTemp("", "mushmatch-archive-*")
	if err != nil {
		return "", fmt.Errorf("archive: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	manifest := Manifest{
		Version:   1,
		Server:    "mushmatch",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		WorldName: params.WorldName,
		Objects:   params.ObjectCount,
		Files:     make(map[string]FileEntry),
	}

	var boltStaged string
	if params.SnapshotFunc != nil {
		boltStaged = filepath.Join(tmpDir, "world.bolt")
		if err := params.SnapshotFunc(boltStaged); err != nil {
			return "", fmt.Errorf("archive: bolt snapshot: %w", err)
		}
	}

	outFile, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("archive: create %s: %w", archivePath, err)
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	if boltStaged != "" {
		entry, err := addFileToTar(tw, boltStaged, "data/world.bolt")
		if err != nil {
			return "", err
		}
		entry.Type = "bolt"
		manifest.Files["data/world.bolt"] = entry
	}

	if params.FlatfilePath != "" {
		if _, err := os.Stat(params.FlatfilePath); err == nil {
			entry, err := addFileToTar(tw, params.FlatfilePath, "data/world.flat")
			if err != nil {
				return "", err
			}
			entry.Type = "flat"
			manifest.Files["data/world.flat"] = entry
		}
	}

	// The manifest is always the last entry
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: marshal manifest: %w", err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    manifestName,
		Size:    int64(len(manifestJSON)),
		Mode:    0644,
		ModTime: time.Now(),
	}); err != nil {
		return "", fmt.Errorf("archive: write manifest header: %w", err)
	}
	if _, err := tw.Write(manifestJSON); err != nil {
		return "", fmt.Errorf("archive: write manifest: %w", err)
	}

	return archivePath, nil
}

// addFileToTar adds a single file to the tar archive with the given archive
// name, computing its SHA-256 while writing.
func addFileToTar(tw *tar.Writer, srcPath, archName string) (FileEntry, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: open %s: %w", srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: stat %s: %w", srcPath, err)
	}

	// Tar paths use forward slashes
	archName = strings.ReplaceAll(archName, "\\", "/")

	if err := tw.WriteHeader(&tar.Header{
		Name:    archName,
		Size:    info.Size(),
		Mode:    0644,
		ModTime: info.ModTime(),
	}); err != nil {
		return FileEntry{}, fmt.Errorf("archive: header %s: %w", archName, err)
	}

	h := sha256.New()
	written, err := io.Copy(tw, io.TeeReader(f, h))
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: write %s: %w", archName, err)
	}

	return FileEntry{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   written,
	}, nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
