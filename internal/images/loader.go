// Package images loads product photos from a merchant-supplied
// folder into memory for the publication pipeline.
package images

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"marketpush/internal/models"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrNoImagesFound  = errors.New("no images found in folder")
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// LoadFromFolder reads every image file directly inside folderPath.
// Subdirectories are skipped and the scan is not recursive. Entries
// come back in directory enumeration order; callers may only rely on
// positional correspondence with pipeline results.
func LoadFromFolder(folderPath string) ([]models.ImageFile, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folderPath)
		}
		return nil, fmt.Errorf("failed to read folder %s: %w", folderPath, err)
	}

	var imgs []models.ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := mimeTypes[ext]; !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(folderPath, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", entry.Name(), err)
		}

		imgs = append(imgs, models.ImageFile{
			Data:     data,
			Filename: entry.Name(),
			MimeType: MimeTypeForExt(ext),
			Size:     int64(len(data)),
		})
	}

	if len(imgs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImagesFound, folderPath)
	}

	return imgs, nil
}

// MimeTypeForExt maps an extension (with leading dot) to a MIME type.
func MimeTypeForExt(ext string) string {
	if mime, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}
