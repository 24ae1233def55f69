// Package include implements the parser.IncludeHost collaborator: given an
// include directive's kind and target, it fetches the referenced source
// (file, classpath-relative file, or URL), parses it with the same
// parser.Parse entry point used for the top-level document, and returns
// the resulting tree for the parser to splice in. Fetching is grounded on
// the HTTP-client-plus-filesystem style of the teacher's Maven POM
// fetcher; cycle and depth tracking follow that fetcher's recursive
// resolveParent, generalized into an explicit active-source stack.
package include

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/hocon/hocerr"
	"github.com/dhamidi/hocon/parser"
)

// Option configures a Loader, following the functional-options shape the
// rest of this module uses for its own Loader type.
type Option func(*Loader)

func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

func WithMaxDepth(n int) Option {
	return func(l *Loader) { l.maxDepth = n }
}

func WithURLIncludesDisabled(disabled bool) Option {
	return func(l *Loader) { l.urlDisabled = disabled }
}

func WithClasspathRoots(roots []string) Option {
	return func(l *Loader) { l.classpathRoots = roots }
}

func WithMode(mode parser.Mode) Option {
	return func(l *Loader) { l.mode = mode }
}

// Loader resolves include directives for one hocon() evaluation. It is not
// safe for concurrent includes of the same document since the active-stack
// it maintains is scoped to a single parse.
type Loader struct {
	baseDir        string
	classpathRoots []string
	maxDepth       int
	urlDisabled    bool
	mode           parser.Mode

	httpClient *http.Client
	active     []string // currently-open sources, for cycle detection
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		maxDepth:   32,
		mode:       parser.ModeLenient,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResolveInclude implements parser.IncludeHost.
func (l *Loader) ResolveInclude(kind parser.IncludeKind, ref string, required bool) (*parser.Node, error) {
	if len(l.active) >= l.maxDepth {
		return nil, &hocerr.IncludeError{Kind: hocerr.IncludeIOError, Source: ref,
			Cause: fmt.Errorf("max include depth %d exceeded", l.maxDepth)}
	}

	source, data, err := l.fetch(kind, ref)
	if err != nil {
		if incErr, ok := err.(*hocerr.IncludeError); ok {
			return nil, incErr
		}
		if os.IsNotExist(err) {
			return nil, &hocerr.IncludeError{Kind: hocerr.IncludeNotFound, Source: ref}
		}
		return nil, &hocerr.IncludeError{Kind: hocerr.IncludeIOError, Source: ref, Cause: err}
	}

	for _, a := range l.active {
		if a == source {
			return nil, &hocerr.IncludeError{Kind: hocerr.IncludeCircular, Source: ref}
		}
	}

	l.active = append(l.active, source)
	defer func() { l.active = l.active[:len(l.active)-1] }()

	childLoader := &Loader{
		baseDir:        l.resolveChildBaseDir(kind, ref),
		classpathRoots: l.classpathRoots,
		maxDepth:       l.maxDepth,
		urlDisabled:    l.urlDisabled,
		mode:           l.mode,
		httpClient:     l.httpClient,
		active:         l.active,
	}

	node, err := parser.Parse(data, source, l.mode, childLoader)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (l *Loader) resolveChildBaseDir(kind parser.IncludeKind, ref string) string {
	if kind == parser.IncludeURL {
		return l.baseDir
	}
	return filepath.Dir(l.resolvePath(kind, ref))
}

func (l *Loader) fetch(kind parser.IncludeKind, ref string) (source string, data []byte, err error) {
	switch kind {
	case parser.IncludeURL:
		return l.fetchURL(ref)
	case parser.IncludeUnqualified:
		// An unqualified include is resolved as a file only, relative to
		// the base directory; there is no URL fallback, so a URL target
		// has to be written explicitly as url(...).
		path := l.resolvePath(parser.IncludeFile, ref)
		data, err = os.ReadFile(path)
		return path, data, err
	default:
		path := l.resolvePath(kind, ref)
		data, err = os.ReadFile(path)
		return path, data, err
	}
}

func (l *Loader) resolvePath(kind parser.IncludeKind, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	if kind == parser.IncludeClasspath {
		for _, root := range l.classpathRoots {
			candidate := filepath.Join(root, ref)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		if len(l.classpathRoots) > 0 {
			return filepath.Join(l.classpathRoots[0], ref)
		}
		return ref
	}
	return filepath.Join(l.baseDir, ref)
}

func (l *Loader) fetchURL(ref string) (string, []byte, error) {
	if l.urlDisabled {
		return ref, nil, &hocerr.IncludeError{Kind: hocerr.IncludeDisabled, Source: ref}
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, nil, fmt.Errorf("not a URL: %s", ref)
	}

	resp, err := l.httpClient.Get(ref)
	if err != nil {
		return ref, nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ref, nil, os.ErrNotExist
	}
	if resp.StatusCode != http.StatusOK {
		return ref, nil, fmt.Errorf("fetch %s: HTTP %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ref, nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return ref, data, nil
}
