package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gotailwindcss/iconify/internal/log"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("gotailwindcss", "Iconify icons for Go+TailwindCSS")
	v   = build.Flag("verbose", "Print verbose output").Short('v').Bool()

	build        = app.Command("build", "Build CSS output")
	buildOutput  = build.Flag("output", "Output file name, use hyphen for stdout").Short('o').Default("-").String()
	buildContent = build.Flag("content", "Glob of markup files scanned for icon classes, e.g. 'src/**/*.html' (repeatable)").Strings()
	buildConfig  = build.Flag("config", "YAML file with content globs and plugin options").String()
	buildMinify  = build.Flag("minify", "Minify the CSS output").Short('m').Bool()
	buildWatch   = build.Flag("watch", "Rebuild when inputs or content files change").Short('w').Bool()
	buildInput   = build.Arg("input", "Input file name(s)").Strings()
)

func main() {

	switch kingpin.MustParse(app.Parse(os.Args[1:])) {

	case build.FullCommand():

		level := "info"
		if *v {
			level = "debug"
		}
		logger := log.New(log.Config{Level: level, Console: true})

		b := &builder{
			output:  *buildOutput,
			content: *buildContent,
			inputs:  *buildInput,
			minify:  *buildMinify,
			log:     log.WithComponent(logger, "build"),
		}
		if *buildConfig != "" {
			if err := b.loadConfig(*buildConfig); err != nil {
				logger.Fatal().Err(err).Str("file", *buildConfig).Msg("cannot read config")
			}
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		var err error
		if *buildWatch {
			err = b.watch(ctx)
		} else {
			err = b.run()
		}
		if err != nil {
			logger.Fatal().Err(err).Msg("build failed")
		}

	default:
		fmt.Fprintf(os.Stderr, "No command specified\n")
		os.Exit(1)
	}

}
