package prefix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tcs := map[string]string{
		"":        "/",
		"/":       "/",
		"app":     "/app/",
		"/app":    "/app/",
		"app/":    "/app/",
		"/app/":   "/app/",
		"a/b":     "/a/b/",
		"/a/b/c/": "/a/b/c/",
	}

	for in, want := range tcs {
		require.Equal(t, want, Normalize(in), in)
	}
}

func TestTable(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		table := New[string]().
			Add("/a/", "a").
			Add("/a/b/", "ab")

		route, found := table.Match("/a/b/x")
		require.True(t, found)
		require.Equal(t, "a", route.Handler)
		require.Equal(t, "/a/", route.Prefix)
	})

	t.Run("registration order matters", func(t *testing.T) {
		table := New[string]().
			Add("/a/b/", "ab").
			Add("/a/", "a")

		route, found := table.Match("/a/b/x")
		require.True(t, found)
		require.Equal(t, "ab", route.Handler)

		route, found = table.Match("/a/c")
		require.True(t, found)
		require.Equal(t, "a", route.Handler)
	})

	t.Run("prefix itself without trailing slash", func(t *testing.T) {
		table := New[int]().Add("app1", 1)

		for _, path := range []string{"/app1", "/app1/", "/app1/resource"} {
			route, found := table.Match(path)
			require.True(t, found, path)
			require.Equal(t, 1, route.Handler)
		}
	})

	t.Run("segment boundaries", func(t *testing.T) {
		table := New[int]().Add("/app", 1)

		for _, path := range []string{"/app2", "/application", "/", "", "/ap"} {
			_, found := table.Match(path)
			require.False(t, found, path)
		}
	})

	t.Run("root catches everything", func(t *testing.T) {
		table := New[int]().Add("/api", 1).Add("/", 2)

		route, found := table.Match("/anything/else")
		require.True(t, found)
		require.Equal(t, 2, route.Handler)

		route, found = table.Match("")
		require.True(t, found)
		require.Equal(t, 2, route.Handler)
	})

	t.Run("empty table", func(t *testing.T) {
		table := New[int]()
		_, found := table.Match("/")
		require.False(t, found)
		require.Zero(t, table.Len())
	})

	t.Run("routes", func(t *testing.T) {
		table := New[int]().Add("x", 1).Add("y", 2)
		require.Equal(t, []Route[int]{{"/x/", 1}, {"/y/", 2}}, table.Routes())
	})
}
