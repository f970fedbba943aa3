package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionAppendReplaceRemove(t *testing.T) {
	c := NewCollection(items("1", "2"))

	next, ok := c.Append(Item{ID: "3"})
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, ids(next.Items()))
	assert.Equal(t, []string{"1", "2"}, ids(c.Items()), "earlier value untouched")

	replaced, ok := next.Replace(Item{ID: "2", Title: "new"})
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, ids(replaced.Items()))
	assert.Equal(t, "new", replaced.Items()[1].Title)
	assert.Equal(t, "title 2", next.Items()[1].Title)

	removed, ok := replaced.Remove("1")
	assert.True(t, ok)
	assert.Equal(t, []string{"2", "3"}, ids(removed.Items()))
	assert.Equal(t, 3, replaced.Len())
}

func TestCollectionMissesReturnSameValue(t *testing.T) {
	c := NewCollection(items("1", "2"))

	next, ok := c.Replace(Item{ID: "9"})
	assert.False(t, ok)
	assert.Same(t, &c.Items()[0], &next.Items()[0])

	next, ok = c.Remove("9")
	assert.False(t, ok)
	assert.Same(t, &c.Items()[0], &next.Items()[0])
}

func TestCollectionAppendExistingReplacesInPlace(t *testing.T) {
	c := NewCollection(items("1", "2", "3"))

	next, ok := c.Append(Item{ID: "2", Title: "dup"})
	assert.False(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, ids(next.Items()))
	assert.Equal(t, "dup", next.Items()[1].Title)
}

func TestNewCollectionCopiesInput(t *testing.T) {
	src := items("1", "2")
	c := NewCollection(src)
	src[0].Title = "mutated"
	assert.Equal(t, "title 1", c.Items()[0].Title)

	empty := NewCollection[Item](nil)
	assert.Equal(t, 0, empty.Len())
	_, found := empty.Find("1")
	assert.False(t, found)
}
