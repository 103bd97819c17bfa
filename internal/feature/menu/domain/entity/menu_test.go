package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTheme_Valid(t *testing.T) {
	for _, th := range []Theme{ThemeLight, ThemeDark, ThemeMinimal, ThemeElegant, ThemeScroll} {
		assert.True(t, th.Valid(), th)
	}
	assert.False(t, Theme("neon").Valid())
	assert.False(t, Theme("").Valid())
}

func TestMenu_OwnedBy(t *testing.T) {
	m := &Menu{UserID: 7}
	assert.True(t, m.OwnedBy(7))
	assert.False(t, m.OwnedBy(8))
	// 未認証（0）は所有者として扱わない
	assert.False(t, (&Menu{}).OwnedBy(0))
}
