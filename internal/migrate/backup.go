package migrate

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupPrefix names backup archives so rotation can find them.
const backupPrefix = "skillbook-backup-"

// Backup archives the entire skill tree at baseDir into a timestamped
// tar.gz under backupDir, then rotates old archives down to keep.
func Backup(baseDir, backupDir string, keep int, now time.Time) (string, error) {
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := backupPrefix + now.UTC().Format("20060102-150405") + ".tar.gz"
	archivePath := filepath.Join(backupDir, name)

	file, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup archive: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	tw := tar.NewWriter(gz)

	err = filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		// Backups never include earlier backups.
		if strings.HasPrefix(path, backupDir) {
			return nil
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		tw.Close()
		gz.Close()
		os.Remove(archivePath)
		return "", fmt.Errorf("backup failed: %w", err)
	}

	if err := tw.Close(); err != nil {
		gz.Close()
		os.Remove(archivePath)
		return "", err
	}
	if err := gz.Close(); err != nil {
		os.Remove(archivePath)
		return "", err
	}

	if err := rotate(backupDir, keep); err != nil {
		return archivePath, err
	}
	return archivePath, nil
}

// rotate removes the oldest backups beyond keep. Archive names embed
// their timestamp, so lexical order is chronological order.
func rotate(backupDir string, keep int) error {
	if keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return err
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), backupPrefix) {
			backups = append(backups, entry.Name())
		}
	}
	if len(backups) <= keep {
		return nil
	}

	sort.Strings(backups)
	for _, name := range backups[:len(backups)-keep] {
		if err := os.Remove(filepath.Join(backupDir, name)); err != nil {
			return fmt.Errorf("failed to rotate backup %s: %w", name, err)
		}
	}
	return nil
}
