package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalContent_Variants(t *testing.T) {
	tests := []struct {
		name string
		kind ContentKind
		data string
		want ItemContent
	}{
		{
			name: "cloze",
			kind: ContentKindCloze,
			data: `{"text": "El ___ duerme.", "answer": "gato", "hints": ["animal"]}`,
			want: ClozeContent{Text: "El ___ duerme.", Answer: "gato", Hints: []string{"animal"}},
		},
		{
			name: "vocabulary",
			kind: ContentKindVocabulary,
			data: `{"word": "gato", "translation": "cat"}`,
			want: VocabularyContent{Word: "gato", Translation: "cat"},
		},
		{
			name: "sentence",
			kind: ContentKindSentence,
			data: `{"source": "El gato duerme.", "translation": "The cat sleeps."}`,
			want: SentenceContent{Source: "El gato duerme.", Translation: "The cat sleeps."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalContent(tt.kind, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kind, got.Kind())
		})
	}
}

func TestUnmarshalContent_UnknownKind(t *testing.T) {
	_, err := UnmarshalContent("AUDIO", []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content ItemContent
		wantErr bool
	}{
		{name: "valid cloze", content: ClozeContent{Text: "a ___", Answer: "b"}},
		{name: "cloze without answer", content: ClozeContent{Text: "a ___"}, wantErr: true},
		{name: "valid vocabulary", content: VocabularyContent{Word: "a", Translation: "b"}},
		{name: "vocabulary without word", content: VocabularyContent{Translation: "b"}, wantErr: true},
		{name: "valid sentence", content: SentenceContent{Source: "a", Translation: "b"}},
		{name: "sentence without translation", content: SentenceContent{Source: "a"}, wantErr: true},
		{name: "nil content", content: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestItem_CheckAnswer(t *testing.T) {
	item := Item{Content: VocabularyContent{Word: "gato", Translation: "cat"}}

	assert.True(t, item.CheckAnswer("cat"))
	assert.True(t, item.CheckAnswer("  CAT  "), "comparison ignores case and whitespace")
	assert.False(t, item.CheckAnswer("dog"))
	assert.False(t, item.CheckAnswer(""))

	var empty Item
	assert.False(t, empty.CheckAnswer("anything"), "item without content never matches")
}

func TestItem_A_DefaultsToRasch(t *testing.T) {
	item := Item{Discrimination: 0}
	assert.Equal(t, 1.0, item.A())

	item.Discrimination = 1.7
	assert.Equal(t, 1.7, item.A())
}
