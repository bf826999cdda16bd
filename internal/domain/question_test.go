package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedTextUnmarshal(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  LocalizedText
	}{
		{name: "plain string", input: `"Aspirin"`, want: Text("Aspirin")},
		{name: "both languages", input: `{"zh":"阿司匹林","en":"Aspirin"}`, want: Bilingual("阿司匹林", "Aspirin")},
		{name: "english only", input: `{"en":"Aspirin"}`, want: Bilingual("", "Aspirin")},
		{name: "empty object", input: `{}`, want: LocalizedText{}},
		{name: "null", input: `null`, want: LocalizedText{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got LocalizedText
			require.NoError(t, json.Unmarshal([]byte(tc.input), &got))
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects numbers", func(t *testing.T) {
		var got LocalizedText
		assert.Error(t, json.Unmarshal([]byte(`42`), &got))
	})
}

func TestTagsUnmarshal(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Tags
	}{
		{name: "array", input: `["cardio","murmur"]`, want: Tags{"cardio", "murmur"}},
		{name: "delimited string", input: `"cardio; murmur ;; valve"`, want: Tags{"cardio", "murmur", "valve"}},
		{name: "blank string", input: `"  "`, want: nil},
		{name: "null", input: `null`, want: nil},
		{name: "unsupported type", input: `7`, want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got Tags
			require.NoError(t, json.Unmarshal([]byte(tc.input), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestQuestionDecode(t *testing.T) {
	raw := `{
		"question_id": "980",
		"question_stem": {"zh": "患者…", "en": "A patient… {{exhibit_1}}"},
		"question": "Which drug?",
		"options": {"A": {"en": "Aspirin"}, "C": "Heparin"},
		"correct_answer": "C",
		"explanation": {"en": "Because.\n\nReally."},
		"has_exhibits": true,
		"exhibit_files": ["image1.jpg"],
		"tags": "cardio;pharm"
	}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, "980", q.ID)
	assert.Equal(t, Text("Which drug?"), q.Prompt)
	assert.Len(t, q.Options, 2)
	assert.Equal(t, Text("Heparin"), q.Options["C"])
	assert.True(t, q.HasExhibits)
	assert.Equal(t, []string{"image1.jpg"}, q.ExhibitFiles)
	assert.Equal(t, Tags{"cardio", "pharm"}, q.Tags)
	assert.True(t, q.IsCorrect("C"))
	assert.False(t, q.IsCorrect("A"))
}

func TestQuestionKey(t *testing.T) {
	assert.Equal(t, "cvs_980", QuestionKey("cvs", "980"))
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LangZH, ParseLanguage("zh"))
	assert.Equal(t, LangBoth, ParseLanguage("both"))
	assert.Equal(t, LangEN, ParseLanguage(""))
	assert.Equal(t, LangEN, ParseLanguage("fr"))
}
