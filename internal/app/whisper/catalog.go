package whisper

// DefaultModel is used when a request does not select a size. It is the
// smallest and fastest member of the catalog.
const DefaultModel = "tiny"

// ModelInfo describes the speed/accuracy/memory tradeoff of one model
// size. The descriptors are relative, not benchmarks.
type ModelInfo struct {
	Size     string `json:"size"`
	Speed    string `json:"speed"`
	Accuracy string `json:"accuracy"`
	VRAM     string `json:"vram"`
}

// modelOrder lists the identifiers from fastest to most accurate.
var modelOrder = []string{"tiny", "base", "small", "medium", "large"}

var catalog = map[string]ModelInfo{
	"tiny":   {Size: "tiny", Speed: "fastest", Accuracy: "basic", VRAM: "1GB"},
	"base":   {Size: "base", Speed: "fast", Accuracy: "good", VRAM: "1GB"},
	"small":  {Size: "small", Speed: "medium", Accuracy: "better", VRAM: "2GB"},
	"medium": {Size: "medium", Speed: "slow", Accuracy: "great", VRAM: "5GB"},
	"large":  {Size: "large", Speed: "slowest", Accuracy: "best", VRAM: "10GB"},
}

// Catalog returns a copy of the known model identifiers and their
// descriptors.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(catalog))
	for id, info := range catalog {
		out[id] = info
	}
	return out
}

// ModelIDs returns the known identifiers, fastest first.
func ModelIDs() []string {
	return append([]string(nil), modelOrder...)
}

// IsKnownModel reports whether id belongs to the fixed identifier set.
func IsKnownModel(id string) bool {
	_, ok := catalog[id]
	return ok
}

// WeightFile returns the weights file name for a model identifier. The
// same name keys the blob store object.
func WeightFile(id string) string {
	return "ggml-" + id + ".bin"
}

// DisplayName returns the public model name reported in responses.
func DisplayName(id string) string {
	return "whisper-" + id
}
