package radix

import (
	"testing"

	"github.com/indigo-web/h2tp/kv"
	"github.com/stretchr/testify/require"
)

func BenchmarkTreeMatch(b *testing.B) {
	tree := New[int]()
	_ = tree.Insert("/hello/world", 1)
	_ = tree.Insert("/hello/whopper", 2)
	_ = tree.Insert("/henry/world", 3)
	_ = tree.Insert("/hello/world/somewhere", 4)
	_ = tree.Insert("/user/{id}/posts/{post}", 5)
	wildcards := kv.New()
	b.ResetTimer()

	b.Run("static", func(b *testing.B) {
		for range b.N {
			_, _ = tree.Lookup("/hello/world/somewhere", nil)
		}
	})

	b.Run("dynamic", func(b *testing.B) {
		for range b.N {
			wildcards.Clear()
			_, _ = tree.Lookup("/user/42/posts/1337", wildcards)
		}
	})
}

func TestTree(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		tree := New[int]()
		keys := []string{"hello", "hell", "henry", "aboba"}

		for i, key := range keys {
			require.NoError(t, tree.Insert(key, i+1))
		}

		for i, key := range keys {
			value, found := tree.Lookup(key, nil)
			require.True(t, found)
			require.Equal(t, i+1, value)
		}

		_, found := tree.Lookup("he", nil)
		require.False(t, found)
	})

	t.Run("shorter key inserted after the longer one", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/users/list", 1))
		require.NoError(t, tree.Insert("/users", 2))
		require.NoError(t, tree.Insert("/use", 3))

		test(t, tree, "/users/list", 1, "", "")
		test(t, tree, "/users", 2, "", "")
		test(t, tree, "/use", 3, "", "")
	})

	t.Run("basic dynamic at the end", func(t *testing.T) {
		tree := New[int]()
		wildcards := kv.New()
		require.NoError(t, tree.Insert("/user/{id}", 1))
		_, found := tree.Lookup("/user", nil)
		require.False(t, found)
		value, found := tree.Lookup("/user/wow", wildcards)
		require.True(t, found)
		require.Equal(t, 1, value)
		require.Equal(t, "wow", wildcards.Value("id"))
	})

	t.Run("dynamic in the middle", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/user/{id}", 1))
		require.NoError(t, tree.Insert("/user/{id}/name", 2))
		require.NoError(t, tree.Insert("/user/{id}/naked", 3))

		_, found := tree.Lookup("/user/", nil)
		require.False(t, found)

		_, found = tree.Lookup("/user/42/na", kv.New())
		require.False(t, found)

		_, found = tree.Lookup("/user//name", nil)
		require.False(t, found)

		test(t, tree, "/user/42", 1, "id", "42")
		test(t, tree, "/user/42/name", 2, "id", "42")
		test(t, tree, "/user/42/naked", 3, "id", "42")
	})

	t.Run("multiple dynamic segments", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/user/{id}/posts/{post}", 1))
		wildcards := kv.New()
		value, found := tree.Lookup("/user/42/posts/1337", wildcards)
		require.True(t, found)
		require.Equal(t, 1, value)
		require.Equal(t, "42", wildcards.Value("id"))
		require.Equal(t, "1337", wildcards.Value("post"))
	})

	t.Run("overriding static", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("hello/world", 1))
		require.NoError(t, tree.Insert("hello/pavlo", 2))
		require.NoError(t, tree.Insert("hello/{name}", 3))
		require.NoError(t, tree.Insert("hello/{name}/hi", 4))
		require.NoError(t, tree.Insert("hello/pavlo/hi", 5))

		test(t, tree, "hello/world", 1, "", "")
		test(t, tree, "hello/pavlo", 2, "", "")
		test(t, tree, "hello/pavlo/hi", 5, "", "")
		test(t, tree, "hello/henry", 3, "name", "henry")
		test(t, tree, "hello/jimmy/hi", 4, "name", "jimmy")
	})

	t.Run("mismatching wildcards", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/user/{id}", 1))
		require.ErrorIs(t, tree.Insert("/user/{name}/posts", 2), ErrMismatchingWildcards)
	})

	t.Run("bad templates", func(t *testing.T) {
		for _, template := range []string{
			"/user/{id",
			"/user/id}",
			"/user/prefix{id}",
			"/user/{id}suffix",
			"/user/{a/b}",
		} {
			require.ErrorIs(t, New[int]().Insert(template, 1), ErrBadTemplate, template)
		}
	})

	t.Run("falls back to dynamic when static prefix leads nowhere", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/about", 1))
		require.NoError(t, tree.Insert("/{slug}", 2))
		require.NoError(t, tree.Insert("/hello/pavlo", 3))
		require.NoError(t, tree.Insert("/hello/{name}", 4))

		test(t, tree, "/about", 1, "slug", "")
		test(t, tree, "/aboutus", 2, "slug", "aboutus")
		test(t, tree, "/contact", 2, "slug", "contact")
		test(t, tree, "/hello/pavlo", 3, "name", "")
		test(t, tree, "/hello/pavlov", 4, "name", "pavlov")
		test(t, tree, "/hello/bob", 4, "name", "bob")
	})

	t.Run("falls back through a dynamic segment", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/user/{id}/bio", 1))
		require.NoError(t, tree.Insert("/user/{id}/{tab}", 2))

		wildcards := kv.New()
		value, found := tree.Lookup("/user/42/biography", wildcards)
		require.True(t, found)
		require.Equal(t, 2, value)
		require.Equal(t, "42", wildcards.Value("id"))
		require.Equal(t, "biography", wildcards.Value("tab"))
	})

	t.Run("wildcards of abandoned branches are dropped", func(t *testing.T) {
		tree := New[int]()
		require.NoError(t, tree.Insert("/x/{w}/end", 1))
		require.NoError(t, tree.Insert("/{s}/{t}/q", 2))

		wildcards := kv.New()
		value, found := tree.Lookup("/x/1/q", wildcards)
		require.True(t, found)
		require.Equal(t, 2, value)
		require.Equal(t, "x", wildcards.Value("s"))
		require.Equal(t, "1", wildcards.Value("t"))
		require.False(t, wildcards.Has("w"))
		require.Equal(t, 2, wildcards.Len())

		wildcards.Clear()
		_, found = tree.Lookup("/x/1/nope", wildcards)
		require.False(t, found)
		require.True(t, wildcards.Empty())
	})
}

func test(t *testing.T, tree *Node[int], path string, value int, wKey, wVal string) {
	w := kv.New()
	val, found := tree.Lookup(path, w)
	require.True(t, found, path)
	require.Equal(t, value, val)
	require.Equal(t, wVal, w.Value(wKey))
}
