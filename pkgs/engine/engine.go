// Package engine drives a whole-document build: scanning <xtml> tags,
// resolving includes and defines, evaluating block ASTs, and running the
// final placeholder pass.
package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xtml-lang/xtml/pkgs/ast"
	"github.com/xtml-lang/xtml/pkgs/config"
	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/eval"
	"github.com/xtml-lang/xtml/pkgs/lexer"
	"github.com/xtml-lang/xtml/pkgs/registry"
	"github.com/xtml-lang/xtml/pkgs/scanner"
	"github.com/xtml-lang/xtml/pkgs/types"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{([^\}]+)\}\}`)
	unresolvedRe  = regexp.MustCompile(`\{\{@([a-zA-Z0-9_]+)\}\}`)
	leftoverRe    = regexp.MustCompile(`(?s)<xtml>.*?</xtml>`)
)

// Engine builds documents. One Engine may build many files; each build
// gets its own root environment seeded from the project config.
type Engine struct {
	interp *eval.Interp
	cfg    *config.Config
	debug  bool
	logOut io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig seeds every build with the project config's defines and
// routes output through its output_dir.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithDebug enables build progress logging.
func WithDebug(debug bool) Option {
	return func(e *Engine) { e.debug = debug }
}

// WithLogOutput redirects progress and reported-error output (stderr by
// default).
func WithLogOutput(w io.Writer) Option {
	return func(e *Engine) { e.logOut = w }
}

// New creates an Engine evaluating against the given function registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		cfg:    &config.Config{},
		logOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.interp = eval.New(reg, eval.WithErrOut(e.logOut))
	return e
}

func (e *Engine) logf(format string, args ...any) {
	if e.debug {
		fmt.Fprintf(e.logOut, format+"\n", args...)
	}
}

// BuildFile reads path and builds its content. Includes are resolved
// relative to the file's directory.
func (e *Engine) BuildFile(path string) (string, error) {
	e.logf("Building file %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot read input file %s", path), err)
	}

	env := types.NewEnvironment()
	e.cfg.Apply(env)

	return e.BuildContent(string(data), filepath.Dir(path), env)
}

// BuildToFile builds path and writes the output document next to the
// input (or into the configured output directory) with the extension
// replaced by .html. It returns the output path.
func (e *Engine) BuildToFile(path string) (string, error) {
	content, err := e.BuildFile(path)
	if err != nil {
		return "", err
	}

	outputPath := e.OutputPath(path)
	if err := WriteFile(content, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// OutputPath derives the output file location for an input path.
func (e *Engine) OutputPath(inputPath string) string {
	name := filepath.Base(inputPath)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	dir := filepath.Dir(inputPath)
	if e.cfg.OutputDir != "" {
		dir = e.cfg.OutputDir
	}
	return filepath.Join(dir, name+".html")
}

// BuildContent runs the full pipeline over one document: per-tag
// processing, the placeholder pass, the unresolved scan and the final
// cleanup. The environment is the build's root environment and is
// mutated throughout.
func (e *Engine) BuildContent(content, basePath string, env types.Environment) (string, error) {
	root := &ast.Root{Env: env}

	for _, tag := range scanner.Scan(content) {
		switch {
		case tag.SelfClosing && tag.Attributes["include"] != "":
			resolveGlobal := strings.TrimSpace(tag.Attributes["resolve"]) != "local"
			includePath := filepath.Join(basePath, strings.TrimSpace(tag.Attributes["include"]))

			included, err := e.resolveInclude(includePath, env, tag, resolveGlobal)
			if err != nil {
				return "", err
			}
			content = strings.Replace(content, tag.Full, included, 1)

		case tag.SelfClosing && tag.Attributes["define"] != "":
			name, value, err := resolveDefine(tag)
			if err != nil {
				return "", err
			}
			env.Define(name, value)
			content = strings.Replace(content, tag.Full, "", 1)

		case tag.SelfClosing:
			// Neither include nor define: the tag has no output.
			content = strings.Replace(content, tag.Full, "", 1)

		default:
			nodes, err := ast.ParseBody(lexer.Preprocess(tag.Content))
			if err != nil {
				return "", err
			}
			block := &ast.Block{Children: nodes}
			root.Children = append(root.Children, block)

			result, err := e.interp.Evaluate(block, env)
			if err != nil {
				return "", err
			}
			content = strings.Replace(content, tag.Full, result.Text, 1)
		}
	}

	content, err := e.resolvePlaceholders(content, env)
	if err != nil {
		return "", err
	}

	if unresolved := findUnresolvedVars(content); len(unresolved) > 0 {
		for _, name := range unresolved {
			fmt.Fprintf(e.logOut, "Error: unresolved variable: %s\n", name)
		}
		return "", errors.Newf(errors.ErrValue, "build failed due to %d unresolved variables", len(unresolved)).WithSnippet(content)
	}

	content = dropVarLines(content)
	content = leftoverRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content), nil
}

// resolveInclude recursively builds an included file. The include starts
// from a copy of the parent environment; with resolve="global" (the
// default) its mutations are merged back, with resolve="local" the copy
// is discarded. param-*
// attributes become string bindings either way, with {{@name}}
// references in their values substituted from the parent environment
// first.
func (e *Engine) resolveInclude(path string, env types.Environment, tag scanner.Tag, resolveGlobal bool) (string, error) {
	e.logf("Resolving include: %s", path)

	local := env.Clone()

	for name, value := range paramsToVars(tag.Attributes) {
		value.Raw = substituteVars(value.Raw, env)
		local.Define(name, value)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot read include %s", path), err)
	}

	included, err := e.BuildContent(string(data), filepath.Dir(path), local)
	if err != nil {
		return "", err
	}

	if resolveGlobal {
		env.Merge(local)
	}
	return included, nil
}

// resolvePlaceholders substitutes every `{{@name}}` and `{{ns::fn(...)}}`
// fragment. Substitution is idempotent: resolved output contains no
// placeholder syntax, so a second pass is a no-op.
func (e *Engine) resolvePlaceholders(content string, env types.Environment) (string, error) {
	replacements := make(map[string]string)

	for _, m := range placeholderRe.FindAllStringSubmatch(content, -1) {
		placeholder := m[0]
		if _, done := replacements[placeholder]; done {
			continue
		}

		inner := strings.TrimSpace(m[1])
		switch {
		case strings.HasPrefix(inner, "@"):
			value, err := e.interp.EvalExpr(inner[1:], env)
			if err != nil {
				return "", err
			}
			if value.IsUnknown() {
				return "", errors.Newf(errors.ErrValue, "placeholder evaluated to no value: %s", placeholder)
			}
			replacements[placeholder] = value.Raw

		case strings.Contains(inner, "::"):
			value, err := e.interp.EvalExpr(inner, env)
			if err != nil {
				return "", err
			}
			if value.IsUnknown() {
				return "", errors.Newf(errors.ErrValue, "placeholder evaluated to no value: %s", placeholder)
			}
			replacements[placeholder] = value.Raw

		default:
			return "", errors.Newf(errors.ErrParse, "unknown placeholder format: %s", placeholder)
		}
	}

	for placeholder, value := range replacements {
		content = strings.ReplaceAll(content, placeholder, value)
	}
	return content, nil
}

// resolveDefine handles `<xtml define="name" value="..." type="..." />`.
func resolveDefine(tag scanner.Tag) (string, types.Value, error) {
	name := strings.TrimSpace(tag.Attributes["define"])
	if name == "" {
		return "", types.Unknown(), errors.New(errors.ErrParse, "variable key is empty").WithSnippet(tag.Full)
	}

	value := strings.TrimSpace(tag.Attributes["value"])
	if value == "" {
		return "", types.Unknown(), errors.Newf(errors.ErrParse, "variable value is empty for variable: %s", name).WithSnippet(tag.Full)
	}

	switch strings.TrimSpace(tag.Attributes["type"]) {
	case "", "string":
		return name, types.Str(value), nil
	case "number":
		if !types.IsDigits(value) {
			return "", types.Unknown(), errors.Newf(errors.ErrParse, "invalid number value for variable: %s", name).WithSnippet(tag.Full)
		}
		return name, types.NumFromString(value), nil
	default:
		return "", types.Unknown(), errors.Newf(errors.ErrParse, "unknown variable type %q for variable: %s", tag.Attributes["type"], name).WithSnippet(tag.Full)
	}
}

// paramsToVars turns param-<name> attributes into string bindings.
func paramsToVars(attributes map[string]string) map[string]types.Value {
	vars := make(map[string]types.Value)
	for key, value := range attributes {
		if name, ok := strings.CutPrefix(key, "param-"); ok {
			vars[name] = types.Str(value)
		}
	}
	return vars
}

// substituteVars replaces {{@name}} references in s from env. Used for
// include parameter values, which are substituted before the included
// file is built.
func substituteVars(s string, env types.Environment) string {
	for name, value := range env {
		s = strings.ReplaceAll(s, "{{@"+name+"}}", value.Raw)
	}
	return s
}

// findUnresolvedVars lists names of residual {{@name}} placeholders.
func findUnresolvedVars(content string) []string {
	var unresolved []string
	for _, m := range unresolvedRe.FindAllStringSubmatch(content, -1) {
		unresolved = append(unresolved, m[1])
	}
	return unresolved
}

// dropVarLines removes lines that begin with @var. Declarations that
// survived outside <xtml> regions carry no output.
func dropVarLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "@var") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// WriteFile writes content atomically: a temp file in the target
// directory renamed over the destination once fully written.
func WriteFile(content, outputPath string) error {
	dir := filepath.Dir(outputPath)

	tmp, err := os.CreateTemp(dir, ".xtml-*")
	if err != nil {
		return errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot create output file in %s", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot write output file %s", outputPath), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot write output file %s", outputPath), err)
	}

	if err := os.Rename(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrIO, fmt.Sprintf("cannot create output file %s", outputPath), err)
	}
	return nil
}
