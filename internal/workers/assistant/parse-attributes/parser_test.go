package parseattributes

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"
	"product-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioA = `Category: "Western"
Individual_category: "jeans"
colour: "Black"
MOVE_ON: "true"
FOLLOW_UP_MESSAGE: "Searching now."`

// ==========================
// Scenarios
// ==========================

func TestParse_WellFormedBlock(t *testing.T) {
	attrs, err := Parse(scenarioA)
	require.NoError(t, err)

	assert.Equal(t, models.StructuredAttributes{
		Category:           models.Some("Western"),
		IndividualCategory: models.Some("jeans"),
		Gender:             models.Attribute{},
		Colour:             models.Some("Black"),
		MoveOn:             true,
		FollowUpMessage:    models.Some("Searching now."),
	}, attrs)
	assert.Equal(t, "NA", attrs.Gender.String())
}

func TestParse_MissingColourDefaults(t *testing.T) {
	raw := `Category: "Western"
Individual_category: "jeans"
MOVE_ON: "true"
FOLLOW_UP_MESSAGE: "Searching now."`

	attrs, err := Parse(raw)
	require.NoError(t, err)

	want, _ := Parse(scenarioA)
	want.Colour = models.Attribute{}
	assert.Equal(t, want, attrs)
	assert.Equal(t, "NA", attrs.Colour.String())
}

func TestParse_Defaults(t *testing.T) {
	for _, raw := range []string{"", "nothing useful here", "Unknown: value\nOther: thing"} {
		attrs, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, models.StructuredAttributes{}, attrs, "input %q", raw)

		data, err := json.Marshal(attrs)
		require.NoError(t, err)
		assert.JSONEq(t, `{"category":"NA","individual_category":"NA","gender":"NA","colour":"NA","move_on":false,"follow_up_message":"NA"}`, string(data))
	}
}

// ==========================
// Line Semantics
// ==========================

func TestParse_LineRules(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, a models.StructuredAttributes)
	}{
		{
			name: "continuation appends with a single space",
			raw:  "FOLLOW_UP_MESSAGE: \"Which colour\nwould you like?\"",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Which colour would you like?", a.FollowUpMessage.String())
			},
		},
		{
			name: "continuation before any key is ignored",
			raw:  "stray text\nCategory: Western",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Western", a.Category.String())
			},
		},
		{
			name: "unrecognized key keeps current field",
			raw:  "colour: Navy\nNote: ignore me\nBlue",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Navy Blue", a.Colour.String())
			},
		},
		{
			name: "blank lines append a space each",
			raw:  "Category: Western\n\n   \nIndividual_category: jeans",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Western  ", a.Category.String())
				assert.Equal(t, "jeans", a.IndividualCategory.String())
			},
		},
		{
			name: "trailing blank lines extend the last field",
			raw:  "FOLLOW_UP_MESSAGE: hi\n\n",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "hi  ", a.FollowUpMessage.String())
			},
		},
		{
			name: "blank line after MOVE_ON stops the search",
			raw:  "Category: Western\nMOVE_ON: \"true\"\n\nFOLLOW_UP_MESSAGE: ok",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.False(t, a.MoveOn)
				assert.Equal(t, "ok", a.FollowUpMessage.String())
			},
		},
		{
			name: "split on first colon only",
			raw:  "FOLLOW_UP_MESSAGE: Note: we only sell fashion",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Note: we only sell fashion", a.FollowUpMessage.String())
			},
		},
		{
			name: "keys are case sensitive",
			raw:  "category: Western\nCOLOUR: Black",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.False(t, a.Category.IsSet())
				assert.False(t, a.Colour.IsSet())
			},
		},
		{
			name: "whitespace around keys and values is trimmed",
			raw:  "   colour   :    \"Teal\"   ",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Teal", a.Colour.String())
			},
		},
		{
			name: "later key overwrites earlier",
			raw:  "colour: Red\ncolour: Green",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Green", a.Colour.String())
			},
		},
		{
			name: "explicit NA is absent",
			raw:  "category_by_Gender: \"NA\"",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.False(t, a.Gender.IsSet())
			},
		},
		{
			name: "CRLF line endings",
			raw:  "Category: Western\r\nMOVE_ON: true",
			check: func(t *testing.T, a models.StructuredAttributes) {
				assert.Equal(t, "Western", a.Category.String())
				assert.True(t, a.MoveOn)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := Parse(tt.raw)
			require.NoError(t, err)
			tt.check(t, attrs)
		})
	}
}

func TestParse_MoveOn(t *testing.T) {
	tests := map[string]bool{
		`MOVE_ON: "true"`:  true,
		`MOVE_ON: TRUE`:    true,
		`MOVE_ON: True`:    true,
		`MOVE_ON: "false"`: false,
		`MOVE_ON: maybe`:   false,
		`MOVE_ON:`:         false,
		`MOVE_ON: true!`:   false,
		"MOVE_ON: true\nplease": false,
		"":                 false,
	}

	for raw, want := range tests {
		attrs, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, attrs.MoveOn, "input %q", raw)
	}
}

func TestParse_Idempotent(t *testing.T) {
	first, err := Parse(scenarioA)
	require.NoError(t, err)
	second, err := Parse(scenarioA)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_NonTextInput(t *testing.T) {
	_, err := Parse(string([]byte{0xff, 0xfe, 'C'}))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParseFailed)
}

// ==========================
// Handler
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(DefaultConfig(), nil, logger.NewTestLogger(t))

	raw, _ := json.Marshal(scenarioA)
	out, err := h.Execute(context.Background(), &Input{RawResponse: raw})
	require.NoError(t, err)
	assert.True(t, out.MoveOn)
	assert.Equal(t, "jeans", out.Attributes.IndividualCategory.String())
}

func TestHandler_Execute_NonStringResponse(t *testing.T) {
	h := NewHandler(DefaultConfig(), nil, logger.NewTestLogger(t))

	for _, raw := range []string{`{"Category":"Western"}`, `42`, ``} {
		_, err := h.Execute(context.Background(), &Input{RawResponse: json.RawMessage(raw)})
		require.Error(t, err, "input %q", raw)
		assert.Equal(t, apperrors.ErrCodeParseFailed, apperrors.AsStandardError(err).Code)
	}
}
