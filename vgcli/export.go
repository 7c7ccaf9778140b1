package vgcli

import (
	"path/filepath"
	"strings"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/vgraster/vgraster/vgexport"
)

var supportedFormats = []string{vgexport.FormatPNG, vgexport.FormatSVG}

// resolveOutputFormat picks the export format from the --format flag or,
// when unset, the output path's extension. The flag is case insensitive;
// extensions must match exactly.
func resolveOutputFormat(formatFlag string, outputPath string) (string, error) {
	path := outputPath
	if path == "-" {
		path = ""
	}
	format, err := vgexport.ResolveFormat(strings.ToLower(formatFlag), path)
	if err != nil {
		if outputPath == "-" && formatFlag == "" {
			return "", xmain.UsageErrorf("writing to stdout requires --format. Supported formats are: %s", strings.Join(supportedFormats, ", "))
		}
		return "", xmain.UsageErrorf("%v. Supported formats are: %s", err, strings.Join(supportedFormats, ", "))
	}
	return format, nil
}

// newExt must include the leading dot.
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}
