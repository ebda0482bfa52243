package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(""))
	assert.Equal(t, "hello world", Text("<b>hello</b> world"))
	assert.Equal(t, "", Text("<script>alert(1)</script>"))
	assert.Equal(t, "Tom & Jerry", Text("Tom &amp; Jerry"))
	assert.Equal(t, "it's fine", Text("  it's fine  "))
}
