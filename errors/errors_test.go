package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/oxidar-web/oxidar/http/status"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("rendering", func(t *testing.T) {
		require.Equal(t, "(Untyped) boom 42", Untypedf("boom %d", 42).Error())
		require.Equal(t, "(IO) EOF", FromIO(io.EOF).Error())
		require.Equal(t, "(404) Resource Not Found", NewNotFound("").Error())
		require.Equal(t, "(404) Could not tie to an app.", NewNotFound("Could not tie to an app.").Error())
		require.Equal(t, "(400) bad", BadRequestf("bad").Error())
		require.Equal(t, "(503) busy", Unavailablef("busy").Error())
	})

	t.Run("status lines", func(t *testing.T) {
		require.Equal(t, status.Status("500 Server Error"), Untypedf("x").Status())
		require.Equal(t, status.Status("500 Server Error"), FromIO(io.EOF).Status())
		require.Equal(t, status.Status("404 Resource Not Found"), NewNotFound("").Status())
		require.Equal(t, status.Status("400 Bad Request"), BadRequestf("x").Status())
		require.Equal(t, status.Status("503 Service Unavailable"), Unavailablef("x").Status())
	})

	t.Run("unwrap", func(t *testing.T) {
		err := AbortIO(io.ErrUnexpectedEOF)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		require.Equal(t, "Abortion Error (IO) unexpected EOF", err.Error())
	})
}

func TestToResponse(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		resp, ok := HTTP404("Could not tie to an app.").ToResponse()
		require.True(t, ok)
		require.Equal(t,
			"HTTP/1.1 404 Resource Not Found\r\n\r\n<h1 style='text-align: center'>Could not tie to an app.</h1>",
			string(resp.Bytes()),
		)
	})

	t.Run("escapes message", func(t *testing.T) {
		resp, ok := NewNormal(BadRequestf("<script>")).ToResponse()
		require.True(t, ok)
		require.Contains(t, resp.Content.Body, "&lt;script&gt;")
		require.Equal(t, status.StatusBadRequest, resp.Status)
	})

	t.Run("fatal and abortion", func(t *testing.T) {
		_, ok := NewFatal(Untypedf("x")).ToResponse()
		require.False(t, ok)

		_, ok = NewAbortion(Untypedf("x")).ToResponse()
		require.False(t, ok)
	})
}

func TestClassify(t *testing.T) {
	require.Nil(t, Classify(nil))

	fatal := FatalIO(io.EOF)
	require.Same(t, fatal, Classify(fatal))
	require.Same(t, fatal, Classify(fmt.Errorf("wrapped: %w", fatal)))
	require.True(t, Classify(fatal).IsFatal())

	notFound := NewNotFound("nope")
	failure := Classify(notFound)
	require.Equal(t, Normal, failure.Severity)
	require.Same(t, notFound, failure.Err)

	plain := stderrors.New("plain")
	failure = Classify(plain)
	require.Equal(t, Normal, failure.Severity)
	require.Equal(t, Untyped, failure.Err.Kind)
	require.ErrorIs(t, failure, plain)
	require.Equal(t, "Normal Error (Untyped) plain", failure.Error())

	t.Run("failure without error", func(t *testing.T) {
		empty := &Failure{Severity: Normal}
		require.Equal(t, "Normal Error", empty.Error())
		require.NoError(t, empty.Unwrap())

		failure := Classify(empty)
		require.Equal(t, Normal, failure.Severity)
		require.Equal(t, Untyped, failure.Err.Kind)
		response, ok := failure.ToResponse()
		require.True(t, ok)
		require.Equal(t, status.StatusServerError, response.Status)

		failure = Classify(&Failure{Severity: Fatal})
		require.True(t, failure.IsFatal())
		require.NotNil(t, failure.Err)
	})
}
