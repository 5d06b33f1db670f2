package installer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/valter-silva-au/dmenv/internal/observability"
	"golang.org/x/term"
)

// Options configure an installation.
type Options struct {
	Dest    string // target file; picked among the writable PATH entries when empty
	Upgrade bool   // replace an existing dest
	Version string // release tag; defaults to Version
	BaseURL string // defaults to DefaultBaseURL
	GOOS    string // defaults to runtime.GOOS
	PathEnv string // defaults to $PATH

	Client  *http.Client
	Printer *observability.Printer
	// Pick chooses the install directory. It defaults to the terminal picker
	// when stdin is a terminal.
	Pick func(entries []string) (string, error)
}

// ExistsError is returned when dest is already present and Upgrade is unset.
type ExistsError struct {
	Path string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s already exists. Use --upgrade to upgrade", e.Path)
}

// Install downloads the dmenv release for the current platform and returns
// the path it was written to.
func Install(ctx context.Context, opts Options) (string, error) {
	if opts.Version == "" {
		opts.Version = Version
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Printer == nil {
		opts.Printer = observability.NewPrinter()
	}
	if opts.Pick == nil {
		opts.Pick = terminalPick(opts.Printer)
	}
	log := observability.WithComponent("installer")

	url, err := URL(opts.BaseURL, opts.Version, opts.GOOS)
	if err != nil {
		return "", err
	}

	dest := opts.Dest
	if dest == "" {
		pathEnv := opts.PathEnv
		if pathEnv == "" {
			pathEnv = os.Getenv("PATH")
		}
		dir, err := opts.Pick(WritablePathEntries(pathEnv))
		if err != nil {
			return "", err
		}
		dest = filepath.Join(dir, BinaryName(opts.GOOS))
	}

	if _, err := os.Stat(dest); err == nil && !opts.Upgrade {
		return "", &ExistsError{Path: dest}
	}

	opts.Printer.Info1(fmt.Sprintf("Downloading %s to %s", url, dest))
	log.Debug().Str("url", url).Str("dest", dest).Bool("upgrade", opts.Upgrade).Msg("installing")
	progress := func(transferred, total int64) {
		if total > 0 {
			fmt.Fprintf(opts.Printer.Out, "Downloading: %.0f%%\r", float64(transferred)/float64(total)*100)
		}
	}
	if err := Download(ctx, opts.Client, url, dest, progress); err != nil {
		return "", err
	}
	fmt.Fprintln(opts.Printer.Out)
	opts.Printer.Info2(fmt.Sprintf("dmenv %s installed to %s", opts.Version, dest))
	return dest, nil
}

func terminalPick(p *observability.Printer) func([]string) (string, error) {
	return func(entries []string) (string, error) {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return "", fmt.Errorf("stdin is not a terminal, use --dest")
		}
		return PickPathEntry(entries, os.Stdin, p.Out)
	}
}
