package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	assert.Nil(t, ParseTags(""))
	assert.Nil(t, ParseTags("   "))
	assert.Equal(t, Tags{"food"}, ParseTags("food"))
	assert.Equal(t, Tags{"food", "unit 3"}, ParseTags(" food , unit 3 ,"))
}

func TestTagsHasAndManualSkip(t *testing.T) {
	tags := Tags{"food", TagManualSkip}
	assert.True(t, tags.Has("food"))
	assert.False(t, tags.Has("verbs"))
	assert.True(t, tags.ManualSkip())
	assert.False(t, Tags{"food"}.ManualSkip())
	assert.False(t, Tags(nil).ManualSkip())
}

func TestTagsWith(t *testing.T) {
	base := Tags{"food"}
	added := base.With(TagManualSkip)
	assert.Equal(t, Tags{"food", TagManualSkip}, added)
	assert.Equal(t, Tags{"food"}, base, "With must not mutate the receiver")
	assert.Equal(t, added, added.With(TagManualSkip), "no duplicates")
}

func TestTagsSQLRoundTrip(t *testing.T) {
	v, err := Tags{"food", "unit 3"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "food,unit 3", v)

	var scanned Tags
	require.NoError(t, scanned.Scan("food,unit 3"))
	assert.Equal(t, Tags{"food", "unit 3"}, scanned)

	require.NoError(t, scanned.Scan(""))
	assert.Nil(t, scanned)

	require.NoError(t, scanned.Scan([]byte("verbs")))
	assert.Equal(t, Tags{"verbs"}, scanned)

	assert.Error(t, scanned.Scan(42))
}
