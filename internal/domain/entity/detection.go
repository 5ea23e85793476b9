package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LabelHolds зацепы одного цвета в порядке обнаружения
type LabelHolds struct {
	Label ColorLabel
	Holds []Hold
}

// DetectionResult отображение цвет -> зацепы с сохранением порядка цветов.
// Каждый цвет встречается не более одного раза.
type DetectionResult struct {
	groups []LabelHolds
}

// Add добавляет зацепы к цвету; повторный вызов для того же цвета дописывает в конец
func (r *DetectionResult) Add(label ColorLabel, holds ...Hold) {
	for i := range r.groups {
		if r.groups[i].Label == label {
			r.groups[i].Holds = append(r.groups[i].Holds, holds...)
			return
		}
	}
	r.groups = append(r.groups, LabelHolds{Label: label, Holds: append([]Hold(nil), holds...)})
}

// Holds возвращает зацепы цвета или nil
func (r DetectionResult) Holds(label ColorLabel) []Hold {
	for _, g := range r.groups {
		if g.Label == label {
			return g.Holds
		}
	}
	return nil
}

// Labels возвращает цвета в порядке добавления
func (r DetectionResult) Labels() []ColorLabel {
	labels := make([]ColorLabel, len(r.groups))
	for i, g := range r.groups {
		labels[i] = g.Label
	}
	return labels
}

// Groups возвращает копию групп для обхода в порядке отрисовки
func (r DetectionResult) Groups() []LabelHolds {
	out := make([]LabelHolds, len(r.groups))
	copy(out, r.groups)
	return out
}

// Len количество цветов
func (r DetectionResult) Len() int {
	return len(r.groups)
}

// Count общее количество зацепов
func (r DetectionResult) Count() int {
	n := 0
	for _, g := range r.groups {
		n += len(g.Holds)
	}
	return n
}

// Only оставляет один цвет (пустой результат, если цвета нет)
func (r DetectionResult) Only(label ColorLabel) DetectionResult {
	var out DetectionResult
	if holds := r.Holds(label); len(holds) > 0 {
		out.Add(label, holds...)
	}
	return out
}

// MarshalJSON пишет объект {"red": [...], ...} в порядке цветов
func (r DetectionResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range r.groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(g.Label))
		if err != nil {
			return nil, err
		}
		holds := g.Holds
		if holds == nil {
			holds = []Hold{}
		}
		value, err := json.Marshal(holds)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *DetectionResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode detection result: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode detection result: expected object")
	}

	var out DetectionResult
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode detection result: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode detection result: expected key")
		}
		label, err := ParseLabel(key)
		if err != nil {
			return err
		}

		var holds []Hold
		if err := dec.Decode(&holds); err != nil {
			return fmt.Errorf("decode holds for %s: %w", label, err)
		}
		for i := range holds {
			holds[i].Label = label
		}
		out.Add(label, holds...)
	}

	*r = out
	return nil
}

// Route зацепы одной трассы
type Route struct {
	Color ColorLabel `json:"color"`
	Holds []Hold     `json:"holds"`
}

// FullVisualization зацепы вместе с обоими вариантами визуализации (base64 PNG)
type FullVisualization struct {
	Holds         DetectionResult `json:"holds"`
	Visualization string          `json:"visualization"`
	Overlay       string          `json:"overlay_visualization"`
}

// BackgroundRemoval результат удаления фона
type BackgroundRemoval struct {
	Base64Image string `json:"base64_image"`
	FilePath    string `json:"file_path"`

	PNG []byte `json:"-"`
}
