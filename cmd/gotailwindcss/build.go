package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/gotailwindcss/iconify"
	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/gotailwindcss/iconify/twpurge"
	"github.com/rs/zerolog"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file.
type fileConfig struct {
	Content []string       `yaml:"content"`
	Plugin  map[string]any `yaml:"plugin"`
}

// builder runs conversions for the build command.  The loader is kept
// between runs so icon sets are only read once while watching.
type builder struct {
	output  string
	content []string
	inputs  []string
	minify  bool
	options map[string]any
	stdout  io.Writer
	loader  *twiconset.Loader
	log     zerolog.Logger

	mu sync.Mutex // held by run while watching
}

func (b *builder) loadConfig(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	b.content = append(b.content, cfg.Content...)
	b.options = cfg.Plugin
	return nil
}

func (b *builder) run() error {

	start := time.Now()

	if b.loader == nil {
		b.loader = twiconset.NewLoader()
		b.loader.Log = b.log.With().Str("component", "loader").Logger()
	}

	var candidates []string
	if len(b.content) > 0 {
		p := twpurge.New(nil)
		p.SetLogger(b.log)
		files, err := p.Glob(b.content...)
		if err != nil {
			return err
		}
		candidates = p.Candidates()
		b.log.Debug().Int("files", len(files)).Int("candidates", len(candidates)).Msg("content scanned")
	}

	var buf bytes.Buffer
	conv := iconify.New(&buf, b.loader)
	conv.SetLogger(b.log)
	conv.SetCandidates(candidates)
	if b.options != nil {
		conv.SetPluginOptions(b.options)
	}
	if b.minify {
		conv.SetPostProcFunc(func(out io.Writer, in io.Reader) error {
			m := minify.New()
			m.AddFunc("text/css", css.Minify)
			return m.Minify("text/css", out, in)
		})
	}

	for _, inPath := range b.inputs {
		b.log.Debug().Str("file", inPath).Msg("adding file")
		data, err := os.ReadFile(inPath)
		if err != nil {
			return err
		}
		conv.AddReader(inPath, bytes.NewReader(data), false)
	}

	if err := conv.Run(); err != nil {
		return err
	}

	if b.output == "" || b.output == "-" {
		w := b.stdout
		if w == nil {
			w = os.Stdout
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(b.output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	b.log.Info().
		Str("file", b.output).
		Int("bytes", buf.Len()).
		Dur("took", time.Since(start)).
		Msg("wrote output")
	return nil
}

// watchDirs returns the directories holding the inputs and the content
// files.  Patterns with "**" watch every directory below their base, except
// node_modules and hidden directories.
func (b *builder) watchDirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, in := range b.inputs {
		add(filepath.Dir(in))
	}
	for _, pattern := range b.content {
		base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base = filepath.FromSlash(base)
		add(base)

		if !strings.Contains(rel, "**") {
			matches, err := doublestar.Glob(os.DirFS(base), rel)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(filepath.Dir(filepath.Join(base, filepath.FromSlash(m))))
			}
			continue
		}

		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if p != base && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

// watch builds once and then again after inputs or content files change,
// until ctx is done.
func (b *builder) watch(ctx context.Context) error {

	b.mu.Lock()
	if err := b.run(); err != nil {
		b.log.Error().Err(err).Msg("build failed")
	}
	b.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dirs, err := b.watchDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	b.log.Info().Strs("dirs", dirs).Msg("watching for changes")

	out, _ := filepath.Abs(b.output)
	debounced := debounce.New(100 * time.Millisecond)
	rebuild := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if err := b.run(); err != nil {
			b.log.Error().Err(err).Msg("build failed")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if p, _ := filepath.Abs(event.Name); p == out {
				continue
			}
			b.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("changed")
			debounced(rebuild)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Warn().Err(err).Msg("watcher error")
		}
	}
}
