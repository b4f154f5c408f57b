package stt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en-US", NormalizeLanguage(""))
	assert.Equal(t, "en-US", NormalizeLanguage("en"))
	assert.Equal(t, "id-ID", NormalizeLanguage("id"))
	assert.Equal(t, "en-US", NormalizeLanguage("en-US"))
}
