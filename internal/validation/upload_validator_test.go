package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errpkg "github.com/dhru84/Audio-Translation-Pipeline/internal/errors"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"wav accepted", "speech.wav", 1024, false},
		{"mp3 accepted", "speech.mp3", 1024, false},
		{"flac accepted", "speech.flac", 1024, false},
		{"aac accepted", "speech.aac", 1024, false},
		{"m4a accepted", "speech.m4a", 1024, false},
		{"uppercase extension accepted", "SPEECH.WAV", 1024, false},
		{"ogg rejected", "speech.ogg", 1024, true},
		{"no extension rejected", "speech", 1024, true},
		{"zero byte rejected", "speech.wav", 0, true},
		{"negative size rejected", "speech.wav", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size)
			if tt.wantErr {
				var vErr *errpkg.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "audio_file", vErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLangCodeRule(t *testing.T) {
	v := New()

	type probe struct {
		Code string `validate:"lang_code"`
	}

	assert.NoError(t, v.Struct(probe{Code: "en-IN"}))
	assert.NoError(t, v.Struct(probe{Code: "kn-IN"}))
	assert.NoError(t, v.Struct(probe{Code: "hin-IN"}))
	assert.Error(t, v.Struct(probe{Code: "english"}))
	assert.Error(t, v.Struct(probe{Code: "EN-in"}))
	assert.Error(t, v.Struct(probe{Code: ""}))
}

func TestIsWAV(t *testing.T) {
	assert.True(t, IsWAV("input.wav"))
	assert.True(t, IsWAV("INPUT.WAV"))
	assert.False(t, IsWAV("input.mp3"))
	assert.False(t, IsWAV("input"))
}
