package validation

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

// Supported upload formats. Anything else is rejected before a task is
// created.
var allowedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".aac":  true,
	".m4a":  true,
}

// Language codes look like "en-IN" or "kn-IN".
var langCodeRe = regexp.MustCompile(`^[a-z]{2,3}-[A-Z]{2}$`)

// New returns a validator with the pipeline's custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("lang_code", validateLangCode)
	return v
}

func validateLangCode(fl validator.FieldLevel) bool {
	return langCodeRe.MatchString(fl.Field().String())
}

// ValidateUpload checks the submitted file's extension and size.
// A zero-byte upload is rejected explicitly.
func ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return &errpkg.ValidationError{
			Field: "audio_file",
			Msg:   "invalid file format, allowed formats: wav, mp3, flac, aac, m4a",
		}
	}
	if size <= 0 {
		return &errpkg.ValidationError{
			Field: "audio_file",
			Msg:   "uploaded file is empty",
		}
	}
	return nil
}

// IsWAV reports whether a filename already carries the wav extension.
// Non-WAV uploads go through ffmpeg conversion before splitting.
func IsWAV(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".wav")
}
