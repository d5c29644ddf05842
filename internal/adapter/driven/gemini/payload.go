package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

// part is one element of a candidate's content. Upstream may send either a
// bare JSON string or an object carrying a "text" field.
type part struct {
	text string
}

// Text implements model.TextPart.
func (p part) Text() string { return p.text }

func (p *part) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.text)
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("gemini: unsupported part: %w", err)
	}
	p.text = obj.Text
	return nil
}

// payload is a candidate's content: a plain string, an array of parts, or an
// object with a "parts" array.
type payload []part

func (pl *payload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*pl = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*pl = payload{{text: s}}
		return nil
	case '[':
		var parts []part
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*pl = parts
		return nil
	}

	var obj struct {
		Parts []part `json:"parts"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("gemini: unsupported content: %w", err)
	}
	*pl = obj.Parts
	return nil
}

// parts converts the payload to domain text parts.
func (pl payload) parts() []model.TextPart {
	out := make([]model.TextPart, 0, len(pl))
	for _, p := range pl {
		out = append(out, p)
	}
	return out
}
