package keyword

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// BodyStage converts a raw document body into the plain text the scoring
// stage runs over. Each supported `format` query parameter value maps to
// exactly one stage.
type BodyStage interface {
	ToText(body []byte) (string, error)
}

// stageRegistry is a name-keyed lookup of BodyStages, mirroring the
// query-processing pipeline's named-stage registry: a small, explicit
// table rather than a type switch, so a new format can be added without
// touching the dispatch code.
type stageRegistry struct {
	mu     sync.RWMutex
	stages map[string]BodyStage
}

func newStageRegistry() *stageRegistry {
	return &stageRegistry{stages: make(map[string]BodyStage)}
}

func (r *stageRegistry) Register(name string, stage BodyStage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[name] = stage
}

func (r *stageRegistry) Get(name string) (BodyStage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stages[name]
	return s, ok
}

// FormatText passes the body through unchanged, as UTF-8 text.
const FormatText = "text"

// FormatJSON recursively walks a JSON document and concatenates every
// string leaf with newline separators before handing the result to the
// text stage.
const FormatJSON = "json"

// FormatBinary skips extraction entirely; the document gets no keywords.
const FormatBinary = "binary"

type textStage struct{}

func (textStage) ToText(body []byte) (string, error) {
	return string(body), nil
}

type jsonStage struct{}

func (jsonStage) ToText(body []byte) (string, error) {
	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return "", fmt.Errorf("keyword: decode json body: %w", err)
	}
	var sb strings.Builder
	collectJSONStrings(value, &sb)
	return sb.String(), nil
}

func collectJSONStrings(value interface{}, sb *strings.Builder) {
	switch v := value.(type) {
	case string:
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(v)
	case []interface{}:
		for _, item := range v {
			collectJSONStrings(item, sb)
		}
	case map[string]interface{}:
		for _, item := range v {
			collectJSONStrings(item, sb)
		}
	}
}

type binaryStage struct{}

func (binaryStage) ToText([]byte) (string, error) {
	return "", nil
}

func defaultStageRegistry() *stageRegistry {
	r := newStageRegistry()
	r.Register(FormatText, textStage{})
	r.Register(FormatJSON, jsonStage{})
	r.Register(FormatBinary, binaryStage{})
	return r
}
