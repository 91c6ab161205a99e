package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	VERSION, REVISION = "v1.2.3", "abc123"
	defer func() { VERSION, REVISION = "unknown", "HEAD" }()

	s := String()
	assert.Contains(t, s, "elfsection v1.2.3\n")
	assert.Contains(t, s, "revision: abc123")
	assert.Contains(t, s, runtime.Version())
}
