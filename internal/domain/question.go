package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionLetters lists the answer letters a question may carry, in display order.
var OptionLetters = []string{"A", "B", "C", "D", "E"}

// LocalizedText is a value renderable in Chinese or English.
// In the question JSON it is either a plain string, which is language
// agnostic, or an object with optional "zh" and "en" fields.
type LocalizedText struct {
	Plain string
	ZH    string
	EN    string
	// IsPlain is set when the source value was a bare string.
	IsPlain bool
}

// Text returns a LocalizedText holding a language-agnostic string.
func Text(s string) LocalizedText {
	return LocalizedText{Plain: s, IsPlain: true}
}

// Bilingual returns a LocalizedText with both language fields set.
func Bilingual(zh, en string) LocalizedText {
	return LocalizedText{ZH: zh, EN: en}
}

// IsEmpty reports whether no text is available in any language.
func (t LocalizedText) IsEmpty() bool {
	return t.Plain == "" && t.ZH == "" && t.EN == ""
}

// UnmarshalJSON accepts a string, an object with zh/en fields, or null.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var obj struct {
		ZH string `json:"zh"`
		EN string `json:"en"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("localized text must be a string or a {zh, en} object: %w", err)
	}
	*t = Bilingual(obj.ZH, obj.EN)
	return nil
}

// MarshalJSON writes the same shape that was read.
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.IsPlain {
		return json.Marshal(t.Plain)
	}
	obj := map[string]string{}
	if t.ZH != "" {
		obj["zh"] = t.ZH
	}
	if t.EN != "" {
		obj["en"] = t.EN
	}
	return json.Marshal(obj)
}

// Tags holds question tags. The content files store them either as a
// JSON array or as a single semicolon-delimited string.
type Tags []string

// UnmarshalJSON accepts an array of strings, a ";"-delimited string, or null.
// Values of any other type decode to no tags.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = SplitTags(s)
	case data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*t = list
	default:
		*t = nil
	}
	return nil
}

// SplitTags splits a semicolon-delimited tag string, dropping blanks.
func SplitTags(s string) Tags {
	var out Tags
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Question is a single multiple-choice item from a subject's question bank.
type Question struct {
	ID            string                   `json:"question_id" validate:"required"`
	Stem          LocalizedText            `json:"question_stem"`
	Prompt        LocalizedText            `json:"question"`
	Options       map[string]LocalizedText `json:"options"`
	CorrectAnswer string                   `json:"correct_answer" validate:"required,oneof=A B C D E"`
	Explanation   LocalizedText            `json:"explanation"`
	HasExhibits   bool                     `json:"has_exhibits"`
	ExhibitFiles  []string                 `json:"exhibit_files"`
	Tags          Tags                     `json:"tags"`
}

// IsCorrect reports whether option is the question's correct answer.
func (q *Question) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}
