package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"gencatalog/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn or error; anything else means info.
	Level string
	// Format is console (default) or json.
	Format string
	// Writer receives log lines. Nil means os.Stderr.
	Writer io.Writer
	// Color enables ANSI level colors in console output.
	Color bool
}

// New builds a logger. Debug level also records the source location.
func New(opts Options) (*slog.Logger, error) {
	level := levelFromString(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(&consoleHandler{
			shared: &consoleOutput{w: out},
			level:  level,
			source: level <= slog.LevelDebug,
			color:  opts.Color,
		}), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       level,
			AddSource:   level <= slog.LevelDebug,
			ReplaceAttr: jsonAttr,
		})), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates the CLI logger. Logs go to stderr so stdout stays
// free for command output.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{Writer: os.Stderr, Color: isatty.IsTerminal(os.Stderr.Fd())}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}
	return New(opts)
}

func levelFromString(level string) slog.Level {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return parsed
}

// jsonAttr renames time to ts in UTC, lowercases levels and shortens sources.
func jsonAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		return slog.String(slog.LevelKey, strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String(slog.SourceKey, filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
		}
	}
	return attr
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\x1b[90m",
	slog.LevelWarn:  "\x1b[33m",
	slog.LevelError: "\x1b[31m",
}

// consoleOutput serializes writes from every handler derived from one logger.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// consoleHandler prints "ts LEVEL component: msg key=value ...".
type consoleHandler struct {
	shared *consoleOutput
	level  slog.Level
	source bool
	color  bool
	prefix string
	attrs  []scopedAttr
}

// scopedAttr remembers the group prefix in effect when the attr was added.
type scopedAttr struct {
	prefix string
	attr   slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var fields []string
	component := ""
	for _, scoped := range h.attrs {
		appendField(&fields, &component, scoped.prefix, scoped.attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		appendField(&fields, &component, h.prefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var line strings.Builder
	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(h.levelText(record.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component + ": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line.WriteString(msg)
	if h.source && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, field := range fields {
		line.WriteByte(' ')
		line.WriteString(field)
	}
	line.WriteByte('\n')

	h.shared.mu.Lock()
	defer h.shared.mu.Unlock()
	_, err := io.WriteString(h.shared.w, line.String())
	return err
}

func (h *consoleHandler) levelText(level slog.Level) string {
	var label string
	switch {
	case level >= slog.LevelError:
		label, level = "ERROR", slog.LevelError
	case level >= slog.LevelWarn:
		label, level = "WARN", slog.LevelWarn
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		label, level = "DEBUG", slog.LevelDebug
	}
	if !h.color {
		return label
	}
	return levelColors[level] + label + "\x1b[0m"
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]scopedAttr(nil), h.attrs...)
	for _, attr := range attrs {
		next.attrs = append(next.attrs, scopedAttr{prefix: h.prefix, attr: attr})
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// appendField renders attr as key=value, expanding groups with dotted keys.
// The first component attribute becomes the line prefix instead.
func appendField(fields *[]string, component *string, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			appendField(fields, component, prefix, child)
		}
		return
	}
	if attr.Key == FieldComponent && prefix == "" {
		if *component == "" {
			*component = attr.Value.String()
		}
		return
	}
	*fields = append(*fields, prefix+attr.Key+"="+renderValue(attr.Value))
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
