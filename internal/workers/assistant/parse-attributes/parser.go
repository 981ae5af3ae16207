package parseattributes

import (
	"strings"
	"unicode/utf8"

	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/models"
	extractattributes "product-assistant/internal/workers/assistant/extract-attributes"
)

// Recognized keys are the ones the extraction prompt asks for, matched
// exactly (case-sensitive).
const (
	keyCategory           = extractattributes.KeyCategory
	keyIndividualCategory = extractattributes.KeyIndividualCategory
	keyGender             = extractattributes.KeyGender
	keyColour             = extractattributes.KeyColour
	keyMoveOn             = extractattributes.KeyMoveOn
	keyFollowUpMessage    = extractattributes.KeyFollowUpMessage
)

var recognizedKeys = map[string]bool{
	keyCategory:           true,
	keyIndividualCategory: true,
	keyGender:             true,
	keyColour:             true,
	keyMoveOn:             true,
	keyFollowUpMessage:    true,
}

// Parse converts the model's "key: value" lines into the six-field record.
//
// A line with a colon is split on the first one; a recognized key overwrites
// its field and becomes the current field. A line without a colon is appended
// to the current field with a single space. Unrecognized keys are skipped and
// leave the current field unchanged. A blank line is a continuation too, so it
// appends a lone space. MOVE_ON is true only when its final value is "true" in any case.
//
// The only error is ErrParseFailed for input that is not valid UTF-8 text.
func Parse(raw string) (models.StructuredAttributes, error) {
	if !utf8.ValidString(raw) {
		return models.StructuredAttributes{}, apperrors.NewParseFailedError("model response is not valid UTF-8 text")
	}

	fields := map[string]string{
		keyCategory:           models.NotAvailable,
		keyIndividualCategory: models.NotAvailable,
		keyGender:             models.NotAvailable,
		keyColour:             models.NotAvailable,
		keyMoveOn:             "false",
		keyFollowUpMessage:    models.NotAvailable,
	}

	current := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		if key, value, ok := strings.Cut(line, ":"); ok {
			key = strings.TrimSpace(key)
			if recognizedKeys[key] {
				fields[key] = stripQuotes(strings.TrimSpace(value))
				current = key
			}
			continue
		}

		if current == "" {
			continue
		}
		fields[current] += " " + stripQuotes(line)
	}

	return models.StructuredAttributes{
		Category:           models.AttributeFromText(fields[keyCategory]),
		IndividualCategory: models.AttributeFromText(fields[keyIndividualCategory]),
		Gender:             models.AttributeFromText(fields[keyGender]),
		Colour:             models.AttributeFromText(fields[keyColour]),
		MoveOn:             strings.ToLower(fields[keyMoveOn]) == "true",
		FollowUpMessage:    models.AttributeFromText(fields[keyFollowUpMessage]),
	}, nil
}

func stripQuotes(s string) string {
	return strings.Trim(s, `"`)
}

