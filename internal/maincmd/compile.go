package maincmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/gaultier/kotlinc-lite/lang/archive"
	"github.com/gaultier/kotlinc-lite/lang/codegen"
	"github.com/gaultier/kotlinc-lite/lang/lexer"
	"github.com/gaultier/kotlinc-lite/lang/parser"
	"github.com/gaultier/kotlinc-lite/lang/resolver"
	"github.com/gaultier/kotlinc-lite/lang/types"
)

// Compile runs the full lex -> parse -> resolve -> codegen -> write
// pipeline for one source file and writes the resulting .class file
// alongside it (spec §6).
func Compile(ctx context.Context, stdio mainer.Stdio, classpath []string, verbose bool, sourcePath string) error {
	logger := newLogger(stdio, verbose)

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return err
	}

	logger.Info("tokenizing", "file", sourcePath)
	toks, err := lexer.Lex(sourcePath, src)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info("parsing", "file", sourcePath)
	tree, err := parser.Parse(sourcePath, toks)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	thisClassFQN := fileClassName(sourcePath)

	tbl := types.NewTable()
	entries, err := buildClasspathEntries(classpath)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return err
	}
	loader := archive.NewLoader(tbl, entries...)

	logger.Info("resolving", "file", sourcePath, "class", thisClassFQN)
	r := resolver.New(tbl, loader, tree, toks, sourcePath, thisClassFQN)
	if err := r.Resolve(); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info("generating code", "class", thisClassFQN)
	cf, err := codegen.GenerateFile(tbl, tree, toks, loader, thisClassFQN, filepath.Base(sourcePath))
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return err
	}

	outPath := filepath.Join(filepath.Dir(sourcePath), thisClassFQN+".class")
	logger.Info("writing class file", "path", outPath)
	if err := os.WriteFile(outPath, cf.Write(), 0o644); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return err
	}

	return nil
}

// newLogger builds a structured logger writing to stdio.Stderr, at Info
// level when -v is given and Warn otherwise (spec §6's "-v turns on
// verbose diagnostic logging").
func newLogger(stdio mainer.Stdio, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(stdio.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// fileClassName derives the synthesized top-level holder class name from a
// source path per the Kotlin/JVM file-class convention: strip directory and
// extension, capitalize the first letter, append "Kt" (spec §6: "foo.kt ->
// FooKt.class").
func fileClassName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, ".kt")
	if base == "" {
		return "Kt"
	}
	return strings.ToUpper(base[:1]) + base[1:] + "Kt"
}

// buildClasspathEntries turns a list of classpath strings (directories,
// .jar, or .jmod paths) into archive.Entry values, reading jar/jmod bytes
// eagerly (spec §4.5). A missing entry is silently skipped (a partial
// classpath is allowed) UNLESS it is java.base.jmod: failing to load core
// library types is fatal (spec §7).
func buildClasspathEntries(classpath []string) ([]archive.Entry, error) {
	var entries []archive.Entry
	for _, cp := range classpath {
		info, err := os.Stat(cp)
		if err != nil {
			if strings.HasSuffix(cp, "java.base.jmod") {
				return nil, fmt.Errorf("loading core library types: %w", err)
			}
			continue
		}
		if info.IsDir() {
			entries = append(entries, archive.DirEntry{Root: cp})
			continue
		}
		switch {
		case strings.HasSuffix(cp, ".jar"):
			data, err := os.ReadFile(cp)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", cp, err)
			}
			e, err := archive.NewJarEntry(data)
			if err != nil {
				return nil, fmt.Errorf("opening jar %s: %w", cp, err)
			}
			entries = append(entries, e)
		case strings.HasSuffix(cp, ".jmod"):
			data, err := os.ReadFile(cp)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", cp, err)
			}
			e, err := archive.NewJmodEntry(data)
			if err != nil {
				return nil, fmt.Errorf("opening jmod %s: %w", cp, err)
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}
