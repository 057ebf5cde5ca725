package nouns

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagger_CachesAnswers(t *testing.T) {
	calls := 0
	tagger := newTagger(func(word string) ([]string, error) {
		calls++
		if word == "proposal" {
			return []string{"NN"}, nil
		}
		return []string{"VB"}, nil
	}, 10, nil)

	assert.True(t, tagger.IsNoun("proposal"))
	assert.True(t, tagger.IsNoun("proposal"))
	assert.False(t, tagger.IsNoun("run"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, tagger.Len())
}

func TestTagger_AnyTokenCounts(t *testing.T) {
	tagger := newTagger(func(string) ([]string, error) {
		return []string{"DT", "NNS", "."}, nil
	}, 10, nil)
	assert.True(t, tagger.IsNoun("the-features."))
}

func TestTagger_ProperNounsExcluded(t *testing.T) {
	tagger := newTagger(func(string) ([]string, error) {
		return []string{"NNP"}, nil
	}, 10, nil)
	assert.False(t, tagger.IsNoun("Swift"))
}

func TestTagger_ErrorIsNotNoun(t *testing.T) {
	tagger := newTagger(func(string) ([]string, error) {
		return nil, errors.New("model unavailable")
	}, 10, nil)
	assert.False(t, tagger.IsNoun("proposal"))
	assert.Zero(t, tagger.Len())
}

func TestTagger_CacheBounded(t *testing.T) {
	tagger := newTagger(func(string) ([]string, error) {
		return []string{"NN"}, nil
	}, 2, nil)
	tagger.IsNoun("one")
	tagger.IsNoun("two")
	tagger.IsNoun("three")
	assert.Equal(t, 1, tagger.Len())
}

func TestTagger_ProseModel(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the tagging model")
	}
	tagger := NewTagger(100, nil)
	assert.True(t, tagger.IsNoun("proposals"))
}

func TestSet(t *testing.T) {
	s := NewSet("Proposal", "feature", "")
	assert.True(t, s.IsNoun("proposal"))
	assert.True(t, s.IsNoun("Feature,"))
	assert.False(t, s.IsNoun("quickly"))
	assert.Len(t, s, 2)
}

func TestReadSet(t *testing.T) {
	s, err := ReadSet(strings.NewReader("# nouns\nlanguage\n\n  Compiler  \n"))
	require.NoError(t, err)
	assert.Len(t, s, 2)
	assert.True(t, s.IsNoun("compiler"))
}
