package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// DefaultTimestampFormat stamps lines to the microsecond, enough to read
// 50 ms drive spacing off a log.
const DefaultTimestampFormat = "2006/01/02 15:04:05.000000"

var _ Logger = (*logrusLogger)(nil)

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates the logger of a binary (console, robotd). Lines
// go to stdout and, when logDir is set, also to logDir/<component>.log.
func NewLogrusLogger(component string, logLevel string, logDir string) (Logger, error) {
	var out io.Writer = os.Stdout
	if logDir != "" {
		file, err := openComponentLog(logDir, component)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	return newLogger(out, logLevel), nil
}

// NewWriterLogger creates a logger writing to w, for tests that inspect
// output.
func NewWriterLogger(w io.Writer, logLevel string) Logger {
	return newLogger(w, logLevel)
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return newLogger(io.Discard, "panic")
}

func newLogger(out io.Writer, logLevel string) *logrusLogger {
	l := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(&LineFormatter{TimestampFormat: DefaultTimestampFormat})
	l.SetOutput(out)
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func openComponentLog(dir, component string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory '%s': %w", dir, err)
	}
	if component == "" {
		component = "robotweb"
	}
	path := filepath.Join(dir, component+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return file, nil
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

var levelTags = map[logrus.Level]string{
	logrus.TraceLevel: "TRC",
	logrus.DebugLevel: "DBG",
	logrus.InfoLevel:  "INF",
	logrus.WarnLevel:  "WRN",
	logrus.ErrorLevel: "ERR",
	logrus.FatalLevel: "FTL",
	logrus.PanicLevel: "PNC",
}

// LineFormatter writes one line per entry:
//
//	2025/04/06 17:30:00.000000 [WRN] drive dropped l=0.50 session=3f2a
//
// Fields follow the message sorted by key.
type LineFormatter struct {
	TimestampFormat string
}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	layout := f.TimestampFormat
	if layout == "" {
		layout = DefaultTimestampFormat
	}
	fmt.Fprintf(b, "%s [%s] %s", entry.Time.Format(layout), levelTags[entry.Level], entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
