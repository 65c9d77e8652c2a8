package linefile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const pacmanConf = `[options]
HoldPkg     = pacman glibc
Architecture = auto
#Color
#ParallelDownloads = 5

[core]
Include = /etc/pacman.d/mirrorlist
`

func TestEnsureOptionUncommentsFlag(t *testing.T) {
	out, changed := EnsureOption(pacmanConf, "Color", "")
	assert.True(t, changed)
	assert.True(t, HasOption(out, "Color", ""))
	assert.NotContains(t, out, "#Color")

	// second pass converges
	out2, changed := EnsureOption(out, "Color", "")
	assert.False(t, changed)
	assert.Equal(t, out, out2)
}

func TestEnsureOptionReplacesValue(t *testing.T) {
	out, changed := EnsureOption(pacmanConf, "ParallelDownloads", "10")
	assert.True(t, changed)
	assert.True(t, HasOption(out, "ParallelDownloads", "10"))
	assert.NotContains(t, out, "ParallelDownloads = 5")
}

func TestEnsureOptionInsertsIntoOptionsSection(t *testing.T) {
	out, changed := EnsureOption(pacmanConf, "ILoveCandy", "")
	assert.True(t, changed)
	assert.True(t, HasOption(out, "ILoveCandy", ""))
	// must land in [options], not after [core]
	assert.Less(t, strings.Index(out, "ILoveCandy"), strings.Index(out, "[core]"))
}

func TestEnsureOptionTwoFlagsIndependent(t *testing.T) {
	out, _ := EnsureOption(pacmanConf, "Color", "")
	out, _ = EnsureOption(out, "ILoveCandy", "")
	assert.True(t, HasOption(out, "Color", ""))
	assert.True(t, HasOption(out, "ILoveCandy", ""))

	// re-running both in any order changes nothing
	again, changed := EnsureOption(out, "ILoveCandy", "")
	assert.False(t, changed)
	again, changed = EnsureOption(again, "Color", "")
	assert.False(t, changed)
	assert.Equal(t, out, again)
}

func TestAppendLineIdempotent(t *testing.T) {
	line := "/dev/sda1 /mnt/data ext4 defaults 0 2"
	out, changed := AppendLine("# fstab\n", line)
	assert.True(t, changed)

	out2, changed := AppendLine(out, line)
	assert.False(t, changed)
	assert.Equal(t, out, out2)
	assert.Equal(t, 1, strings.Count(out2, line))
}

func TestAppendKeyValueNeverOverwrites(t *testing.T) {
	content := "EDITOR=vim\n"
	out, changed := AppendKeyValue(content, "EDITOR", "nano")
	assert.False(t, changed)
	assert.Equal(t, content, out)

	out, changed = AppendKeyValue(content, "BROWSER", "firefox")
	assert.True(t, changed)
	assert.Contains(t, out, "EDITOR=vim")
	assert.Contains(t, out, "BROWSER=firefox")
}

func TestHasKeyIgnoresComments(t *testing.T) {
	assert.False(t, HasKey("#EDITOR=vim\n", "EDITOR"))
	assert.True(t, HasKey("EDITOR = vim\n", "EDITOR"))
}
