package usecase

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/user/lens-lookup-service/internal/entity"
)

// allowedImagePrefixes are the data URL headers accepted by ValidateImage.
var allowedImagePrefixes = []string{
	"data:image/png;base64,",
	"data:image/jpeg;base64,",
	"data:image/jpg;base64,",
}

// ValidateImage checks the framing of a data URL payload. It never looks at
// the decoded image itself.
func ValidateImage(image string) error {
	if image == "" {
		return fmt.Errorf("%w: image must be a non-empty base64 data URL", entity.ErrInvalidInput)
	}

	hasPrefix := false
	for _, prefix := range allowedImagePrefixes {
		if strings.HasPrefix(image, prefix) {
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return fmt.Errorf("%w: image must use the data:image/[png|jpeg|jpg];base64 format", entity.ErrInvalidInput)
	}

	_, payload, _ := strings.Cut(image, ",")
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: image payload is not valid base64: %v", entity.ErrInvalidInput, err)
	}
	if len(decoded) == 0 {
		return fmt.Errorf("%w: image payload is empty", entity.ErrInvalidInput)
	}
	return nil
}
