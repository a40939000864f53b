package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/exam-grader/internal/models"
)

// UploadReader turns multipart uploads into images.
type UploadReader struct {
	maxImages int
}

func NewUploadReader(maxImages int) *UploadReader {
	if maxImages <= 0 {
		maxImages = 10
	}
	return &UploadReader{maxImages: maxImages}
}

// Images reads every file under field (or field+"[]") in upload order. An
// empty list is returned as is; callers decide whether that is valid.
func (u *UploadReader) Images(c *fiber.Ctx, field string) ([]models.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
	}

	files := form.File[field]
	if len(files) == 0 {
		files = form.File[field+"[]"]
	}

	if len(files) > u.maxImages {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("at most %d images can be uploaded at once", u.maxImages))
	}

	images := make([]models.Image, 0, len(files))
	for _, fh := range files {
		img, err := readImageFile(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

// Image reads the single file under field. The returned image is empty when
// no file was sent.
func (u *UploadReader) Image(c *fiber.Ctx, field string) (models.Image, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if _, formErr := c.MultipartForm(); formErr != nil {
			return models.Image{}, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
		}
		return models.Image{}, nil
	}
	return readImageFile(fh)
}

func readImageFile(fh *multipart.FileHeader) (models.Image, error) {
	mimeType := fh.Header.Get(fiber.HeaderContentType)
	if mimeType != "" && !strings.HasPrefix(mimeType, "image/") && mimeType != fiber.MIMEOctetStream {
		return models.Image{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file %q is not an image", fh.Filename))
	}

	src, err := fh.Open()
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return models.Image{
		Name:     fh.Filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
