// Package render is the templating boundary: it turns a template id plus
// variable bindings into text.
//
// TextEngine implements it with text/template. Template ids are file names
// resolved against an ordered list of search directories, the first match
// winning, and {{ template "x" }} references are resolved the same way.
// Output is not HTML-escaped.
package render

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"git.home.luguber.info/inful/pagegen/internal/foundation/errors"
	"git.home.luguber.info/inful/pagegen/internal/record"
	"git.home.luguber.info/inful/pagegen/internal/slug"
)

// Engine renders a named template with the given bindings.
type Engine interface {
	Render(name string, bindings map[string]any) (string, error)
}

// MissingKeyMode selects what a template sees for an absent map key.
type MissingKeyMode string

const (
	// MissingKeyDefault prints "<no value>" for absent keys.
	MissingKeyDefault MissingKeyMode = "default"
	// MissingKeyZero prints nothing for absent keys.
	MissingKeyZero MissingKeyMode = "zero"
	// MissingKeyError aborts rendering.
	MissingKeyError MissingKeyMode = "error"
)

// ParseMissingKeyMode validates s; the empty string maps to MissingKeyDefault.
func ParseMissingKeyMode(s string) (MissingKeyMode, error) {
	switch m := MissingKeyMode(s); m {
	case "":
		return MissingKeyDefault, nil
	case MissingKeyDefault, MissingKeyZero, MissingKeyError:
		return m, nil
	default:
		return "", fmt.Errorf("unknown missing key mode %q (want default, zero or error)", s)
	}
}

// TextEngine is an Engine backed by text/template files on disk.
type TextEngine struct {
	roots      []string
	missingKey MissingKeyMode
	nameKeys   []string
	fallback   string
	funcs      template.FuncMap
	compiled   map[string]*template.Template
}

// Option configures a TextEngine.
type Option func(*TextEngine)

// WithMissingKey sets the behaviour for absent map keys.
func WithMissingKey(mode MissingKeyMode) Option {
	return func(e *TextEngine) { e.missingKey = mode }
}

// WithNameKeys sets the lookup order and fallback used by the displayName helper.
func WithNameKeys(keys []string, fallback string) Option {
	return func(e *TextEngine) {
		e.nameKeys = keys
		e.fallback = fallback
	}
}

// WithFuncs adds template helpers, replacing built-in ones of the same name.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *TextEngine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// NewTextEngine creates an engine searching roots in order.
func NewTextEngine(roots []string, opts ...Option) *TextEngine {
	e := &TextEngine{
		roots:      roots,
		missingKey: MissingKeyDefault,
		nameKeys:   record.DefaultNameKeys,
		fallback:   slug.Fallback,
		compiled:   make(map[string]*template.Template),
	}
	e.funcs = e.builtinFuncs()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchRoots splits template paths into their directories, deduplicated in
// first-seen order, and their file names. A bare file name searches ".".
func SearchRoots(paths ...string) (roots, names []string) {
	seen := make(map[string]bool)
	for _, p := range paths {
		dir, file := filepath.Split(p)
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
		names = append(names, file)
	}
	return roots, names
}

// Resolve returns the path of the first root holding a regular file called name.
func (e *TextEngine) Resolve(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return "", errors.NotFoundError("invalid template name").
			WithContext("template", name).
			Build()
	}
	for _, root := range e.roots {
		p := filepath.Join(root, name)
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
		if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "stat template").
				Fatal().
				WithContext("path", p).
				Build()
		}
	}
	return "", errors.NotFoundError("template not found").
		WithContext("template", name).
		WithContext("search_roots", e.roots).
		Build()
}

// Compile parses the named templates up front so syntax errors surface
// before any output is produced.
func (e *TextEngine) Compile(names ...string) error {
	for _, name := range names {
		if _, err := e.compile(name); err != nil {
			return err
		}
	}
	return nil
}

// Render executes the named template with bindings, compiling it on first use.
func (e *TextEngine) Render(name string, bindings map[string]any) (string, error) {
	tpl, err := e.compile(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, bindings); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "render template").
			Fatal().
			WithContext("template", name).
			Build()
	}
	if e.missingKey == MissingKeyZero {
		// Values of map[string]any are interfaces, whose zero value still
		// prints as "<no value>".
		return strings.ReplaceAll(buf.String(), noValue, ""), nil
	}
	return buf.String(), nil
}

// noValue is what text/template prints for a nil interface.
const noValue = "<no value>"

func (e *TextEngine) missingKeyOption() string {
	if e.missingKey == MissingKeyError {
		return "missingkey=error"
	}
	return "missingkey=default"
}

func (e *TextEngine) compile(name string) (*template.Template, error) {
	if tpl, ok := e.compiled[name]; ok {
		return tpl, nil
	}

	root := template.New(name).Funcs(e.funcs).Option(e.missingKeyOption())
	if err := e.parseInto(root, name); err != nil {
		return nil, err
	}

	// Pull in every {{ template "x" }} the set references but does not define.
	for {
		missing := undefinedRefs(root)
		if len(missing) == 0 {
			break
		}
		for _, ref := range missing {
			if err := e.parseInto(root.New(ref), ref); err != nil {
				return nil, err
			}
		}
	}

	e.compiled[name] = root
	return root, nil
}

func (e *TextEngine) parseInto(tpl *template.Template, name string) error {
	path, err := e.Resolve(name)
	if err != nil {
		return err
	}
	// #nosec G304 -- path is resolved under a configured template root.
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "read template").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if _, err := tpl.Parse(string(src)); err != nil {
		return errors.WrapError(err, errors.CategoryRender, "parse template").
			Fatal().
			WithContext("template", name).
			WithContext("path", path).
			Build()
	}
	return nil
}

// undefinedRefs lists template names invoked somewhere in the set that have
// no parsed body yet, sorted for a stable load order.
func undefinedRefs(set *template.Template) []string {
	refs := make(map[string]struct{})
	for _, t := range set.Templates() {
		if t.Tree != nil {
			collectRefs(t.Tree.Root, refs)
		}
	}

	var missing []string
	for name := range refs {
		if t := set.Lookup(name); t == nil || t.Tree == nil {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func collectRefs(node parse.Node, refs map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectRefs(child, refs)
		}
	case *parse.IfNode:
		collectBranch(&n.BranchNode, refs)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, refs)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, refs)
	case *parse.TemplateNode:
		refs[n.Name] = struct{}{}
	}
}

func collectBranch(b *parse.BranchNode, refs map[string]struct{}) {
	collectRefs(b.List, refs)
	if b.ElseList != nil {
		collectRefs(b.ElseList, refs)
	}
}
