package handlers

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arnold/lifesync-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxMediaSize = 20 * 1024 * 1024

// mediaKinds maps accepted file extensions to the journal media type.
var mediaKinds = map[string]string{
	".jpg":  "image",
	".jpeg": "image",
	".png":  "image",
	".webp": "image",
	".gif":  "image",
	".mp3":  "audio",
	".m4a":  "audio",
	".wav":  "audio",
	".ogg":  "audio",
	".mp4":  "video",
	".webm": "video",
	".mov":  "video",
}

// UploadMedia stores a journal attachment and returns the Media value to
// put on an entry.
func UploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	kind, ok := mediaKinds[ext]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file type " + ext,
		})
	}
	if file.Size > maxMediaSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File must be under 20MB",
		})
	}

	if err := os.MkdirAll(deps.UploadDir, 0o755); err != nil {
		deps.Log.Errorw("Failed to create upload directory", "dir", deps.UploadDir, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	if err := c.SaveFile(file, filepath.Join(deps.UploadDir, filename)); err != nil {
		deps.Log.Errorw("Failed to save upload", "file", filename, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	deps.Log.Infow("Media uploaded", "file", filename, "type", kind, "size", file.Size)
	return c.Status(fiber.StatusCreated).JSON(models.Media{
		Type: kind,
		URL:  path.Join(UploadsPath, filename),
	})
}

// UploadsPath is where stored media is served from.
const UploadsPath = "/uploads"
