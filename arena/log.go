package arena

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newDiscardLogger returns a logrus logger wired to io.Discard so the
// library stays silent by default — a host must opt in with WithLogger to
// see anything. This mirrors the teacher's convention of threading an
// optional *uint64 stat pointer through fixalloc.init (runtime/
// mfixalloc.go): accounting is free-standing until a caller wires it up.
func newDiscardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
