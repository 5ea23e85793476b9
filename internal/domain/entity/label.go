package entity

import (
	"fmt"
	"strings"
)

// ColorLabel цветовая категория зацепа
type ColorLabel string

const (
	LabelRed    ColorLabel = "red"
	LabelBlue   ColorLabel = "blue"
	LabelGreen  ColorLabel = "green"
	LabelYellow ColorLabel = "yellow"
	LabelPurple ColorLabel = "purple"
	LabelOrange ColorLabel = "orange"
	LabelPink   ColorLabel = "pink"
	LabelWhite  ColorLabel = "white"
	LabelBlack  ColorLabel = "black"
)

var knownLabels = []ColorLabel{
	LabelRed,
	LabelBlue,
	LabelGreen,
	LabelYellow,
	LabelPurple,
	LabelOrange,
	LabelPink,
	LabelWhite,
	LabelBlack,
}

// Labels возвращает все поддерживаемые цвета в порядке обработки
func Labels() []ColorLabel {
	out := make([]ColorLabel, len(knownLabels))
	copy(out, knownLabels)
	return out
}

// Valid сообщает, входит ли цвет в фиксированный набор
func (l ColorLabel) Valid() bool {
	for _, known := range knownLabels {
		if l == known {
			return true
		}
	}
	return false
}

// Chromatic ложно для белого и чёрного: их нельзя отличить от мела и теней.
func (l ColorLabel) Chromatic() bool {
	return l != LabelWhite && l != LabelBlack
}

func (l ColorLabel) String() string {
	return string(l)
}

// ParseLabel нормализует строку цвета из запроса
func ParseLabel(s string) (ColorLabel, error) {
	label := ColorLabel(strings.ToLower(strings.TrimSpace(s)))
	if !label.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLabel, s)
	}
	return label, nil
}
