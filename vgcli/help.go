package vgcli

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/vgraster/vgraster/lib/version"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--mode vega|vega-lite] [--format png|svg] spec.vl.json [chart.svg | chart.png]

%[1]s renders the Vega or Vega-Lite spec in spec.vl.json to chart.svg or chart.png
using vega-embed inside a headless Chromium. It defaults to chart.svg if an
output path is not provided.

Use - to have %[1]s read the spec from stdin or write the image to stdout
(writing to stdout requires --format).

Flags:
%[3]s
`, filepath.Base(ms.Name), version.Version, ms.Opts.Defaults())
}
