// Package maincmd implements the kotlinc-lite command line: argument
// parsing and Stdio plumbing via github.com/mna/mainer, wired to the
// lex -> parse -> resolve -> codegen -> write pipeline (spec §6).
package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "kotlinc-lite"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [-v] [-c classpath] SOURCE.kt
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [-v] [-c classpath] SOURCE.kt
       %[1]s -h|--help
       %[1]s --version

Ahead-of-time compiler for a Kotlin source subset, emitting a single JVM
.class file per source file.

Valid flag options are:
       -h --help                 Show this help and exit.
       --version                 Print version and exit.
       -v --verbose              Turn on verbose diagnostic logging to
                                 stderr.
       -c --classpath <path>     Colon-separated list of classpath entries
                                 (directories, .jar, or .jmod files). "."
                                 is always implicitly included, and
                                 $JAVA_HOME/jmods/java.base.jmod is always
                                 appended when JAVA_HOME is set.

The source path must end in .kt; the output .class file is written
alongside it, named after the Kotlin/JVM file-class convention (e.g.
foo.kt -> FooKt.class).
`, binName)
)

// envConfig holds the process environment variables the compiler consults,
// populated via github.com/caarlos0/env (spec §6: "-c defaults are backed
// by JAVA_HOME").
type envConfig struct {
	JavaHome         string `env:"JAVA_HOME"`
	ClasspathDefault string `env:"KOTLINC_CLASSPATH"`
}

// Cmd is the top-level command, populated from argv by mainer.Parser.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help      bool   `flag:"h,help"`
	Version   bool   `flag:"version"`
	Verbose   bool   `flag:"v,verbose"`
	Classpath string `flag:"c,classpath"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) != 1 {
		return fmt.Errorf("exactly one source file must be provided, got %d", len(c.args))
	}
	if !strings.HasSuffix(c.args[0], ".kt") {
		return fmt.Errorf("source path must end in .kt: %s", c.args[0])
	}
	return nil
}

// Main parses argv, dispatches to Version/Help/Compile, and maps the result
// to the exit codes spec §6 requires: 0 success, 1 compile error, 2 bad
// usage.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: reading environment: %s\n", binName, err)
		return mainer.Failure
	}

	classpath := buildClasspath(c.Classpath, cfg)

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := Compile(ctx, stdio, classpath, c.Verbose, c.args[0]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildClasspath resolves the effective classpath: "." is always implicitly
// prepended, then the explicit -c flag or else KOTLINC_CLASSPATH, then
// $JAVA_HOME/jmods/java.base.jmod if JAVA_HOME is set — core library types
// (java.lang.String, java.lang.Object, ...) are loaded from there regardless
// of what -c names, since the resolver's boxed-primitive lowering and any
// @InlineOnly standard-library call need them on startup (spec §6).
func buildClasspath(flagValue string, cfg envConfig) []string {
	raw := flagValue
	if raw == "" {
		raw = cfg.ClasspathDefault
	}
	entries := []string{"."}
	if raw != "" {
		entries = append(entries, strings.Split(raw, ":")...)
	}
	if cfg.JavaHome != "" {
		entries = append(entries, cfg.JavaHome+"/jmods/java.base.jmod")
	}
	return entries
}
