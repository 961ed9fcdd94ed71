// Resolves configured file specs into watched directories and filename matchers
package pattern

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"tailf/internal/global"
	"time"
)

// Create registry from configured file specs.
// Specs sharing a directory are tried in configuration order on match.
func NewRegistry(files []global.FileSpec) (registry *Registry, err error) {
	registry = &Registry{
		byDir: make(map[string][]*Spec),
	}

	for _, file := range files {
		directory, basePrefix := filepath.Split(file.Prefix)
		if directory == "" {
			err = fmt.Errorf("file prefix '%s' has no directory component", file.Prefix)
			return
		}
		directory = filepath.Clean(directory)

		exprText := "^" + regexp.QuoteMeta(basePrefix) + Translate(file.TimePattern) + regexp.QuoteMeta(file.Suffix) + "$"
		expr, compileErr := regexp.Compile(exprText)
		if compileErr != nil {
			err = fmt.Errorf("failed to compile matcher for prefix '%s': %v", file.Prefix, compileErr)
			return
		}

		newSpec := &Spec{
			Directory:   directory,
			Prefix:      basePrefix,
			TimePattern: file.TimePattern,
			Suffix:      file.Suffix,
			Topic:       file.Topic,
			expr:        expr,
		}
		registry.byDir[directory] = append(registry.byDir[directory], newSpec)
	}
	return
}

// All directories holding at least one registered pattern
func (registry *Registry) Directories() (directories []string) {
	for directory := range registry.byDir {
		directories = append(directories, directory)
	}
	return
}

// Try each registered pattern in the directory against a basename.
// First registered match wins.
func (registry *Registry) Match(directory string, basename string) (spec *Spec, matched bool) {
	for _, candidate := range registry.byDir[filepath.Clean(directory)] {
		if candidate.MatchBasename(basename) {
			spec = candidate
			matched = true
			return
		}
	}
	return
}

// Match against a full path (directory of the path must be registered)
func (registry *Registry) Lookup(path string) (spec *Spec, matched bool) {
	spec, matched = registry.Match(filepath.Dir(path), filepath.Base(path))
	return
}

// Whether the basename matches prefix + time pattern + suffix
func (spec *Spec) MatchBasename(basename string) (matched bool) {
	matched = spec.expr.MatchString(basename)
	return
}

// Basename this spec resolves to at the given time
func (spec *Spec) CurrentBasename(now time.Time) (basename string) {
	basename = spec.Prefix + Materialize(spec.TimePattern, now) + spec.Suffix
	return
}

// Translate a strftime-style time pattern into a regular expression fragment.
// Supported escapes: %Y %m %d %H %M. Any other %X becomes the literal X.
func Translate(timePattern string) (expr string) {
	var builder strings.Builder

	runes := []rune(timePattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			builder.WriteString(regexp.QuoteMeta(string(runes[i])))
			continue
		}

		i++
		switch runes[i] {
		case 'Y':
			builder.WriteString("[0-9]{4}")
		case 'm', 'd', 'H', 'M':
			builder.WriteString("[0-9]{2}")
		default:
			builder.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}
	expr = builder.String()
	return
}

// Instantiate a strftime-style time pattern at the given local time.
// Same escape set as Translate.
func Materialize(timePattern string, now time.Time) (materialized string) {
	var builder strings.Builder

	runes := []rune(timePattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			builder.WriteRune(runes[i])
			continue
		}

		i++
		switch runes[i] {
		case 'Y':
			builder.WriteString(fmt.Sprintf("%04d", now.Year()))
		case 'm':
			builder.WriteString(fmt.Sprintf("%02d", int(now.Month())))
		case 'd':
			builder.WriteString(fmt.Sprintf("%02d", now.Day()))
		case 'H':
			builder.WriteString(fmt.Sprintf("%02d", now.Hour()))
		case 'M':
			builder.WriteString(fmt.Sprintf("%02d", now.Minute()))
		default:
			builder.WriteRune(runes[i])
		}
	}
	materialized = builder.String()
	return
}
