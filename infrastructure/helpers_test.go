package infrastructure

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const sceneClass = "GeneratedAnimationScene"

// fakeManim behaves like `manim <file> <Class> -ql` run from the work dir.
// Scene sources containing FAIL exit 1 with a traceback, SLEEP hangs and
// NOVIDEO exits cleanly without writing a video, ECHO prints the source.
const fakeManim = `#!/bin/sh
scene="$1"
class="$2"
if [ "$3" != "-ql" ]; then
  echo "unexpected flags: $*" >&2
  exit 2
fi
name=$(basename "$scene" .py)
if grep -q SLEEP "$scene"; then
  exec sleep 5
fi
if grep -q ECHO "$scene"; then
  cat "$scene"
  exit 0
fi
if grep -q FAIL "$scene"; then
  echo "Manim Community v0.18.0"
  echo "  File \"$scene\", line 3" >&2
  echo "SyntaxError: invalid syntax" >&2
  exit 1
fi
echo "Animation 0 : Partial movie file written"
if grep -q NOVIDEO "$scene"; then
  exit 0
fi
mkdir -p "media/videos/$name/480p15"
printf 'fake-mp4' > "media/videos/$name/480p15/$class.mp4"
echo "File ready at media/videos/$name/480p15/$class.mp4"
`

func writeFakeManim(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake renderer is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "manim")
	require.NoError(t, os.WriteFile(path, []byte(fakeManim), 0o755))
	return path
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sceneSources(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.py"))
	require.NoError(t, err)
	return matches
}
