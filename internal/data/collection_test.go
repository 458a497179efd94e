package data

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	id  string
	val int
}

func (i item) GetID() string { return i.id }

func TestCollection_UpdateAndFind(t *testing.T) {
	c := NewCollection[item]()
	c.Insert(item{"a", 1})
	c.Concat(item{"b", 2}, item{"c", 3})

	require.True(t, c.Update(item{"b", 20}))
	require.False(t, c.Update(item{"zz", 0}))
	require.Equal(t, 3, c.Len())

	got, ok := c.Find(func(i item) bool { return i.id == "b" })
	require.True(t, ok)
	require.Equal(t, 20, got.val)

	_, ok = c.Find(func(i item) bool { return i.val > 100 })
	require.False(t, ok)
}

func TestCollection_SelectKeepsTail(t *testing.T) {
	c := NewCollection[item]()
	for i, v := range []int{5, 1, 4, 2, 3} {
		c.Insert(item{string(rune('a' + i)), v})
	}

	out := c.Select(Query[item]{
		Where: func(i item) bool { return i.val != 4 },
		Less:  func(a, b item) int { return cmp.Compare(a.val, b.val) },
		Limit: 2,
	})
	require.Equal(t, []item{{"e", 3}, {"a", 5}}, out)

	all := c.Select(Query[item]{})
	require.Len(t, all, 5)
	all[0].val = 1000

	first, _ := c.Find(func(i item) bool { return i.id == "a" })
	require.Equal(t, 5, first.val)
}
