package shell_test

import (
	"testing"

	"github.com/archprep/archprep/internal/shell"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Run("plain words", func(t *testing.T) {
		out, err := shell.Split("reflector --latest 20")
		require.NoError(t, err)
		require.Equal(t, []string{"reflector", "--latest", "20"}, out)
	})

	t.Run("quoted argument stays whole", func(t *testing.T) {
		out, err := shell.Split(`stow --dir "/home/user/my dots" --target /home/user`)
		require.NoError(t, err)
		require.Equal(t, []string{"stow", "--dir", "/home/user/my dots", "--target", "/home/user"}, out)
	})

	t.Run("single quotes", func(t *testing.T) {
		out, err := shell.Split("echo 'a b'")
		require.NoError(t, err)
		require.Equal(t, []string{"echo", "a b"}, out)
	})

	t.Run("escaped space", func(t *testing.T) {
		out, err := shell.Split(`foo\ bar baz`)
		require.NoError(t, err)
		require.Equal(t, []string{"foo bar", "baz"}, out)
	})

	t.Run("collapses repeated whitespace", func(t *testing.T) {
		out, err := shell.Split("pacman   -S \t --needed")
		require.NoError(t, err)
		require.Equal(t, []string{"pacman", "-S", "--needed"}, out)
	})

	t.Run("mismatched quotes", func(t *testing.T) {
		_, err := shell.Split(`echo "unterminated`)
		require.ErrorIs(t, err, shell.ErrMismatchedQuotes)
	})

	t.Run("trailing backslash", func(t *testing.T) {
		_, err := shell.Split(`echo foo\`)
		require.ErrorIs(t, err, shell.ErrTrailingBackslash)
	})
}
