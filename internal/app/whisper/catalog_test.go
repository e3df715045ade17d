package whisper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelIDsOrderedBySpeed(t *testing.T) {
	assert.Equal(t, []string{"tiny", "base", "small", "medium", "large"}, ModelIDs())
}

func TestCatalogIsACopy(t *testing.T) {
	cat := Catalog()
	cat["tiny"] = ModelInfo{Size: "mutated"}
	assert.Equal(t, "tiny", Catalog()["tiny"].Size)
}

func TestIsKnownModel(t *testing.T) {
	for _, id := range ModelIDs() {
		assert.True(t, IsKnownModel(id), id)
	}
	assert.False(t, IsKnownModel("giant"))
	assert.False(t, IsKnownModel(""))
	assert.False(t, IsKnownModel("Tiny"))
}

func TestWeightFile(t *testing.T) {
	assert.Equal(t, "ggml-tiny.bin", WeightFile("tiny"))
	assert.Equal(t, "ggml-large.bin", WeightFile("large"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "whisper-base", DisplayName("base"))
}

func TestInvalidModelErrorListsChoices(t *testing.T) {
	err := &InvalidModelError{ID: "giant"}
	assert.Equal(t, `Invalid model "giant". Choose from: [tiny base small medium large]`, err.Error())
}
