package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apierrors "ramble/internal/api/errors"
	"ramble/internal/app/audio"
	"ramble/internal/app/whisper"
)

func TestFromDomainInvalidModel(t *testing.T) {
	err := &whisper.InvalidModelError{ID: "giant"}

	apiErr := apierrors.FromDomain(err)

	assert.Equal(t, apierrors.KindInvalidModel, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus())
	assert.Equal(t, `Invalid model "giant". Choose from: [tiny base small medium large]`, apiErr.Message)
}

func TestFromDomainConversionKeepsDecoderOutput(t *testing.T) {
	err := fmt.Errorf("normalize: %w", &audio.ConversionError{Stderr: "Invalid data found when processing input"})

	apiErr := apierrors.FromDomain(err)

	assert.Equal(t, apierrors.KindConversion, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus())
	assert.Equal(t, "Audio conversion failed: Invalid data found when processing input", apiErr.Message)
}

func TestFromDomainTimeout(t *testing.T) {
	err := &audio.TimeoutError{Limit: 30 * time.Second}

	apiErr := apierrors.FromDomain(err)

	assert.Equal(t, apierrors.KindTimeout, apiErr.Kind)
	assert.Equal(t, http.StatusRequestTimeout, apiErr.HTTPStatus())
	assert.Equal(t, "Audio processing timed out (file too large?)", apiErr.Message)
}

func TestFromDomainHidesServerSideDetail(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    apierrors.ErrorKind
		message string
	}{
		{
			name:    "model load",
			err:     &whisper.ModelLoadError{ID: "base", Err: errors.New("download failed: 503")},
			kind:    apierrors.KindModelLoad,
			message: "Failed to load the requested model",
		},
		{
			name:    "recognition",
			err:     &whisper.RecognitionError{Err: errors.New("exit status 137"), Stderr: "killed"},
			kind:    apierrors.KindRecognition,
			message: "Transcription failed",
		},
		{
			name:    "unclassified",
			err:     errors.New("disk full"),
			kind:    apierrors.KindInternal,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := apierrors.FromDomain(tt.err)

			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatus())
			assert.Equal(t, tt.message, apiErr.Message)
			// The cause stays reachable for logging.
			assert.ErrorIs(t, apiErr, tt.err)
		})
	}
}

func TestFromDomainPassesThroughAPIError(t *testing.T) {
	original := apierrors.NewValidationError("No file uploaded")

	apiErr := apierrors.FromDomain(original)

	assert.Same(t, original, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus())
}

func TestNotFoundStatus(t *testing.T) {
	apiErr := apierrors.NewNotFoundError("transcription")

	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus())
	assert.Equal(t, "transcription not found", apiErr.Message)
}
