package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hostelguard/hostelctl/internal/models"
)

// MaxAvatarBytes caps the image accepted for an avatar upload.
const MaxAvatarBytes = 2 * 1024 * 1024

// ErrAvatarNotImage indicates the selected file is not an image.
var ErrAvatarNotImage = errors.New("avatar must be an image file")

// EncodeAvatarFile reads an image from disk and returns it as a base64 data
// URI ready for UploadUserAvatar. The file bytes are transient; nothing is
// kept after encoding.
func EncodeAvatarFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > MaxAvatarBytes {
		return "", fmt.Errorf("avatar exceeds the %s limit", models.FormatFileSize(MaxAvatarBytes))
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", ErrAvatarNotImage
	}

	return "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
