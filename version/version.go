package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Set with -ldflags "-X github.com/jschwinger233/elfsection/version.VERSION=..."
var (
	VERSION  = "unknown"
	REVISION = "HEAD"
	BUILTAT  = "now"
)

func String() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "elfsection %s\n", VERSION)
	fmt.Fprintf(b, "  revision: %s\n", REVISION)
	fmt.Fprintf(b, "  built:    %s\n", BUILTAT)
	fmt.Fprintf(b, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}
