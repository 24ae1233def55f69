// Package hocon is the Loader facade (§6): it wires the parser, merger,
// include resolver, substitution resolver, array post-processor, and
// query/deserialize surface together behind the small set of operations
// external callers use, grounded in the teacher's java/parser
// Option/WithFile functional-options convention.
package hocon

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dhamidi/hocon/include"
	"github.com/dhamidi/hocon/merge"
	"github.com/dhamidi/hocon/parser"
	"github.com/dhamidi/hocon/properties"
	"github.com/dhamidi/hocon/query"
	"github.com/dhamidi/hocon/resolve"
)

// Option configures a Loader.
type Option func(*Loader)

// WithStrict switches parse and resolve errors from embedded BadValue
// nodes to immediate failures.
func WithStrict(strict bool) Option {
	return func(l *Loader) { l.strict = strict }
}

// WithSystemEnvironment controls whether ${VAR} substitutions fall back to
// the real process environment. Defaults to true.
func WithSystemEnvironment(enabled bool) Option {
	return func(l *Loader) { l.useSystem = enabled }
}

// WithEnvironment supplies a map that substitutions not found in the tree
// are looked up in, before the process environment. It is consulted even
// when WithSystemEnvironment(false) is set. Defaults to no map.
func WithEnvironment(env map[string]string) Option {
	return func(l *Loader) { l.environment = env }
}

// WithNoURLIncludes disables `include url(...)` directives and LoadURL.
func WithNoURLIncludes(disabled bool) Option {
	return func(l *Loader) { l.noURLIncludes = disabled }
}

// WithMaxIncludeDepth bounds recursive include nesting. Defaults to 32.
func WithMaxIncludeDepth(depth int) Option {
	return func(l *Loader) { l.maxIncludeDepth = depth }
}

// WithClasspathRoots adds search roots for `include classpath(...)`.
func WithClasspathRoots(roots ...string) Option {
	return func(l *Loader) { l.classpathRoots = roots }
}

// WithLogger injects a field logger used at the Loader/CLI edge only;
// the parser, merger, include, resolve, and query packages never log.
// A nil logger is replaced by a discarding logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Loader) {
		if logger == nil {
			logger = noopLogger()
		}
		l.logger = logger
	}
}

func noopLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Loader accumulates zero or more sources, each parsed as it is loaded,
// and on Hocon() runs merge -> resolve to produce an immutable resolved
// tree (§3 "Lifecycle"). Numerically-keyed objects are turned into arrays
// later, at typed access (query.Value.AsArray).
type Loader struct {
	strict          bool
	useSystem       bool
	environment     map[string]string
	noURLIncludes   bool
	maxIncludeDepth int
	classpathRoots  []string
	baseDir         string
	logger          logrus.FieldLogger

	docs []*parser.Node
	err  error
}

// New constructs a Loader with the documented defaults.
func New(opts ...Option) *Loader {
	l := &Loader{
		useSystem:       true,
		maxIncludeDepth: 32,
		baseDir:         ".",
		logger:          noopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) mode() parser.Mode {
	if l.strict {
		return parser.ModeStrict
	}
	return parser.ModeLenient
}

func (l *Loader) includeLoader() *include.Loader {
	opts := []include.Option{
		include.WithBaseDir(l.baseDir),
		include.WithMaxDepth(l.maxIncludeDepth),
		include.WithURLIncludesDisabled(l.noURLIncludes),
		include.WithMode(l.mode()),
	}
	if len(l.classpathRoots) > 0 {
		opts = append(opts, include.WithClasspathRoots(l.classpathRoots))
	}
	return include.NewLoader(opts...)
}

// LoadStr parses a HOCON document from in-memory text and adds it to the
// Loader's document list.
func (l *Loader) LoadStr(src string, sourceName string) *Loader {
	if l.err != nil {
		return l
	}
	node, err := parser.Parse([]byte(src), sourceName, l.mode(), l.includeLoader())
	if err != nil {
		l.logger.WithField("source", sourceName).WithError(err).Error("parse failed")
		l.err = fmt.Errorf("load %s: %w", sourceName, err)
		return l
	}
	l.docs = append(l.docs, node)
	return l
}

// LoadFile reads and parses a HOCON or (by extension) .properties file.
// Relative include paths within the file resolve against the file's own
// directory.
func (l *Loader) LoadFile(path string) *Loader {
	if l.err != nil {
		return l
	}
	if strings.EqualFold(filepath.Ext(path), ".properties") {
		return l.LoadProperties(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.err = fmt.Errorf("read %s: %w", path, err)
		return l
	}
	prevBase := l.baseDir
	l.baseDir = filepath.Dir(path)
	defer func() { l.baseDir = prevBase }()
	return l.LoadStr(string(data), path)
}

// LoadProperties reads a Java-properties file (§4.7) and inflates it into
// the same Object shape the main grammar produces.
func (l *Loader) LoadProperties(path string) *Loader {
	if l.err != nil {
		return l
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.err = fmt.Errorf("read %s: %w", path, err)
		return l
	}
	node, err := properties.Parse(data, path)
	if err != nil {
		l.err = fmt.Errorf("load %s: %w", path, err)
		return l
	}
	l.docs = append(l.docs, node)
	return l
}

// LoadURL fetches a HOCON document over HTTP(S) and adds it to the
// Loader's document list.
func (l *Loader) LoadURL(url string) *Loader {
	if l.err != nil {
		return l
	}
	if l.noURLIncludes {
		l.err = fmt.Errorf("load %s: url sources disabled", url)
		return l
	}
	resp, err := http.Get(url)
	if err != nil {
		l.err = fmt.Errorf("fetch %s: %w", url, err)
		return l
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		l.err = fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		return l
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		l.err = fmt.Errorf("read %s: %w", url, err)
		return l
	}
	return l.LoadStr(string(data), url)
}

func (l *Loader) resolverEnvironment() map[string]string {
	if l.environment != nil {
		return l.environment
	}
	return nil
}

// Hocon runs merge -> resolve over every source loaded so far, producing
// the immutable resolved tree. Array conversion of numerically-keyed
// objects is not done here; query.Value.AsArray does it on access.
func (l *Loader) Hocon() (*parser.Node, error) {
	if l.err != nil {
		return nil, l.err
	}
	merged := merge.Documents(l.docs...)
	if merged == nil {
		merged = parser.ObjectNode(parser.Position{}, parser.NewObject())
	}
	r := resolve.New(
		resolve.WithSystemEnvironment(l.useSystem),
		resolve.WithEnvironment(l.resolverEnvironment()),
		resolve.WithMode(l.mode()),
	)
	resolved, err := r.Resolve(merged)
	if err != nil {
		l.logger.WithError(err).Error("resolve failed")
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return resolved, nil
}

// Resolve runs Hocon() and decodes the resolved tree onto a freshly
// allocated *T via the query package's reflective visitor.
func Resolve[T any](l *Loader) (*T, error) {
	root, err := l.Hocon()
	if err != nil {
		return nil, err
	}
	var out T
	if err := query.Decode(root, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
