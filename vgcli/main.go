// Package vgcli implements the vgraster command line interface.
package vgcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/vgraster/vgraster/lib/raster"
	"github.com/vgraster/vgraster/lib/version"
	"github.com/vgraster/vgraster/vgexport"
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	watchFlag, err := ms.Opts.Bool("VGRASTER_WATCH", "watch", "w", false, "watch the input spec for changes and re-export")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return err
	}
	formatFlag := ms.Opts.String("VGRASTER_FORMAT", "format", "f", "", "output format, png or svg. Overrides the output path's extension and is required when writing to stdout")
	modeFlag := ms.Opts.String("VGRASTER_MODE", "mode", "m", "", "embedding mode, vega or vega-lite. When omitted it is inferred from the spec's $schema")
	timeoutFlag, err := ms.Opts.Int64("VGRASTER_TIMEOUT", "timeout", "", 60, "maximum number of seconds to wait for the browser-side render")
	if err != nil {
		return err
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	args := ms.Opts.Flags.Args()
	if len(args) == 0 {
		if versionFlag != nil && *versionFlag {
			fmt.Println(version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	if *debugFlag {
		ms.Env.Setenv("DEBUG", "1")
	}

	inputPath := args[0]
	var outputPath string
	if len(args) == 2 {
		outputPath = args[1]
	} else if inputPath == "-" {
		outputPath = "-"
	} else {
		outputPath = renameExt(inputPath, ".svg")
	}

	opts := vgexport.Opts{
		Mode:    *modeFlag,
		Timeout: time.Duration(*timeoutFlag) * time.Second,
	}
	opts.Format, err = resolveOutputFormat(*formatFlag, outputPath)
	if err != nil {
		return err
	}
	// Surface bad modes before a browser is launched.
	if err := opts.Validate(); err != nil {
		return xmain.UsageErrorf("%v", err)
	}

	if *watchFlag && inputPath == "-" {
		return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
	}

	spec, err := readSpec(ms, inputPath)
	if err != nil {
		return err
	}

	sess, err := raster.Init()
	if err != nil {
		return err
	}

	if *watchFlag {
		ms.Log.SetTS(true)
		w := &watcher{
			ms:         ms,
			sess:       sess,
			opts:       opts,
			inputPath:  inputPath,
			outputPath: outputPath,
		}
		// The watcher may swap in a fresh browser after render failures,
		// so cleanup targets whatever session it holds on exit.
		defer func() {
			err = multierr.Combine(err, w.sess.Cleanup())
		}()
		return w.run(ctx)
	}

	defer func() {
		err = multierr.Combine(err, sess.Cleanup())
	}()

	out, err := vgexport.RenderSession(ctx, sess, spec, opts)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", inputPath, err)
	}
	err = ms.WritePath(outputPath, out)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully exported %v to %v", inputPath, outputPath)
	return nil
}

func readSpec(ms *xmain.State, inputPath string) (vgexport.Spec, error) {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}
	var spec vgexport.Spec
	err = json.Unmarshal(input, &spec)
	if err != nil {
		return nil, xmain.UsageErrorf("failed to parse spec %s: %v", inputPath, err)
	}
	return spec, nil
}
