package tfidf

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_EmptyCorpus(t *testing.T) {
	v, rows, err := Fit(nil, Options{})
	assert.True(t, errors.Is(err, ErrEmptyVocabulary))
	assert.Nil(t, v)
	assert.Nil(t, rows)
}

func TestFit_OnlyStopWords(t *testing.T) {
	_, _, err := Fit([]string{"the and of", "a an is"}, Options{})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestFit_UnigramsAndBigrams(t *testing.T) {
	v, rows, err := Fit([]string{"Our hospital locations are in Nassau and Suffolk county."}, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{
		"county",
		"hospital",
		"hospital locations",
		"locations",
		"locations nassau",
		"nassau",
		"nassau suffolk",
		"suffolk",
		"suffolk county",
	}, v.Terms())
	assert.Equal(t, 9, v.Dimension())
	assert.InDelta(t, 1.0, rows[0].Norm(), 1e-12)
}

func TestFit_UnigramsOnly(t *testing.T) {
	v, _, err := Fit([]string{"alpha beta gamma"}, Options{NgramMax: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, v.Terms())
}

func TestFit_MaxFeaturesKeepsHighestDocumentFrequency(t *testing.T) {
	corpus := []string{
		"apple banana cherry",
		"apple banana",
		"apple",
	}
	v, rows, err := Fit(corpus, Options{MaxFeatures: 2, NgramMax: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana"}, v.Terms())
	assert.Len(t, rows, 3)
}

func TestFit_SmoothedIDF(t *testing.T) {
	v, _, err := Fit([]string{"apple banana", "apple"}, Options{NgramMax: 1})
	require.NoError(t, err)
	// apple: df=2, banana: df=1, n=2
	assert.InDelta(t, math.Log(3.0/3.0)+1, v.idf[v.vocabulary["apple"]], 1e-12)
	assert.InDelta(t, math.Log(3.0/2.0)+1, v.idf[v.vocabulary["banana"]], 1e-12)
}

func TestTransform_OutOfVocabularyIsZero(t *testing.T) {
	v, _, err := Fit([]string{"apple banana"}, Options{})
	require.NoError(t, err)
	q := v.Transform("zebra quokka")
	assert.True(t, q.IsZero())
	assert.Equal(t, 0.0, q.Norm())
}

func TestTransform_CaseFoldedAndNormalized(t *testing.T) {
	v, rows, err := Fit([]string{"Hospital locations", "billing questions"}, Options{})
	require.NoError(t, err)
	q := v.Transform("HOSPITAL LOCATIONS")
	assert.InDelta(t, 1.0, q.Norm(), 1e-12)
	assert.InDelta(t, 1.0, q.Dot(rows[0]), 1e-12)
	assert.Equal(t, 0.0, q.Dot(rows[1]))
}

func TestTokenize_DropsSingleCharactersAndStopWords(t *testing.T) {
	v, _, err := Fit([]string{"x"}, Options{})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
	assert.Nil(t, v)

	v, _, err = Fit([]string{"I have 2 cats and 10 dogs"}, Options{NgramMax: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "cats", "dogs"}, v.Terms())
}
