package layoutconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/outlierline/pkg/config"
)

// Load reads a YAML layout file and returns it with the raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Layout, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	layout, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}

	return layout, data, nil
}

// Parse decodes and validates a layout document
func Parse(data []byte) (*Layout, error) {
	var layout Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&layout); err != nil {
		return nil, err
	}

	if err := Validate(&layout); err != nil {
		return nil, err
	}

	return &layout, nil
}

// Hash generates SHA256 hash from Layout (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(layout *Layout) (string, error) {
	jsonBytes, err := json.Marshal(layout)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Apply overrides the bar config with every field the layout sets
func (l *Layout) Apply(bars *config.BarConfig) {
	h := l.Height
	if h.Policy != "" {
		bars.HeightPolicy = h.Policy
	}
	if h.Base > 0 {
		bars.Base = h.Base
	}
	if h.Step > 0 {
		bars.Step = h.Step
	}
	if h.Floor > 0 {
		bars.Floor = h.Floor
	}
	if len(h.Table) > 0 {
		bars.Table = append([]int(nil), h.Table...)
	}
	if h.Fallback > 0 {
		bars.Fallback = h.Fallback
	}
	if l.Images.PlayerHeadshot != "" {
		bars.PlayerHeadshotTemplate = l.Images.PlayerHeadshot
	}
	if l.Images.TeamLogo != "" {
		bars.TeamLogoTemplate = l.Images.TeamLogo
	}
}
