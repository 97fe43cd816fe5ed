package logging

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nerrad567/fhir-auth-service/internal/infrastructure/config"
)

// datePlaceholder in a rotation filename is replaced with the formatted date.
// Filenames without it get the date appended as a suffix.
const datePlaceholder = "%DATE%"

// RotatingWriter writes to a date-stamped log file and switches to a new file
// when the rotation period changes. Within a period, files are split by size
// through lumberjack.
//
// Thread Safety:
//   - Write and Close are safe for concurrent use.
type RotatingWriter struct {
	desc    config.RotationDescriptor
	layout  string
	maxSize int           // megabytes, 0 = unlimited
	keep    int           // dated files to keep, 0 = unlimited
	maxAge  time.Duration // 0 = unlimited
	now     func() time.Time

	mu     sync.Mutex
	period string
	out    *lumberjack.Logger
}

// NewRotatingWriter creates a writer for the given descriptor. No file is
// opened until the first Write.
func NewRotatingWriter(desc config.RotationDescriptor) (*RotatingWriter, error) {
	if strings.TrimSpace(desc.Filename) == "" {
		return nil, errors.New("log rotation requires a filename")
	}

	w := &RotatingWriter{
		desc:   desc,
		layout: goLayout(desc.DateFormat),
		now:    time.Now,
	}

	if desc.MaxSize != nil {
		mb, err := parseSize(*desc.MaxSize)
		if err != nil {
			return nil, err
		}
		w.maxSize = mb
	}
	if desc.MaxLogs != nil {
		keep, age, err := parseRetention(*desc.MaxLogs)
		if err != nil {
			return nil, err
		}
		w.keep, w.maxAge = keep, age
	}

	if dir := filepath.Dir(desc.Filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}
	return w, nil
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if period := w.periodKey(now); period != w.period || w.out == nil {
		if err := w.switchFile(now, period); err != nil {
			return 0, err
		}
	}
	return w.out.Write(p)
}

// Close closes the current file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return nil
	}
	err := w.out.Close()
	w.out = nil
	return err
}

// CurrentFile returns the path the next Write goes to.
func (w *RotatingWriter) CurrentFile() string {
	return w.filenameFor(w.now())
}

// periodKey identifies the rotation period containing t.
func (w *RotatingWriter) periodKey(t time.Time) string {
	switch w.desc.Frequency {
	case config.FrequencyTest:
		return t.Format("2006-01-02T15:04")
	case config.FrequencyCustom:
		return t.Format(w.layout)
	default:
		return t.Format("2006-01-02")
	}
}

func (w *RotatingWriter) filenameFor(t time.Time) string {
	date := t.Format(w.layout)
	if strings.Contains(w.desc.Filename, datePlaceholder) {
		return strings.ReplaceAll(w.desc.Filename, datePlaceholder, date)
	}
	return w.desc.Filename + "." + date
}

func (w *RotatingWriter) switchFile(now time.Time, period string) error {
	if w.out != nil {
		if err := w.out.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
	}

	w.out = &lumberjack.Logger{
		Filename:   w.filenameFor(now),
		MaxSize:    w.maxSize,
		MaxBackups: w.keep,
		MaxAge:     int(w.maxAge / (24 * time.Hour)),
		LocalTime:  true,
	}
	w.period = period
	w.prune(now)
	return nil
}

// prune removes dated files beyond the retention count or age. Errors are
// ignored; a file we cannot remove is retried on the next rotation.
func (w *RotatingWriter) prune(now time.Time) {
	if w.keep == 0 && w.maxAge == 0 {
		return
	}

	pattern := w.desc.Filename + ".*"
	if strings.Contains(w.desc.Filename, datePlaceholder) {
		pattern = strings.ReplaceAll(w.desc.Filename, datePlaceholder, "*")
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	backups, err := filepath.Glob(backupPattern(pattern))
	if err != nil {
		return
	}

	current := w.out.Filename
	type entry struct {
		path string
		mod  time.Time
	}
	var files []entry
	seen := make(map[string]bool, len(matches)+len(backups))
	for _, m := range append(matches, backups...) {
		if m == current || seen[m] {
			continue
		}
		seen[m] = true
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, entry{path: m, mod: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })

	for i, f := range files {
		expired := w.maxAge > 0 && now.Sub(f.mod) > w.maxAge
		// The current file counts towards keep.
		excess := w.keep > 0 && i+1 >= w.keep
		if expired || excess {
			_ = os.Remove(f.path)
		}
	}
}

// backupPattern turns a dated-file glob into one matching lumberjack's
// size-split backups, which are named <stem>-<timestamp><ext>: the backup of
// "auth.log.2026-03-09" is "auth.log-2026-03-09T10-00-00.000.2026-03-09".
func backupPattern(pattern string) string {
	ext := filepath.Ext(pattern)
	return strings.TrimSuffix(pattern, ext) + "-*" + ext
}

// parseSize converts "500k", "10m" or "1g" to whole megabytes, rounding up.
func parseSize(s string) (int, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return 0, nil
	}

	num, unit := raw, 1.0 // bare numbers are megabytes
	switch raw[len(raw)-1] {
	case 'k':
		num, unit = raw[:len(raw)-1], 1.0/1024
	case 'm':
		num = raw[:len(raw)-1]
	case 'g':
		num, unit = raw[:len(raw)-1], 1024
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid log rotation size %q (use e.g. 500k, 10m, 1g)", s)
	}
	return int(math.Ceil(n * unit)), nil
}

// parseRetention reads a file count ("10") or an age in days ("7d").
func parseRetention(s string) (int, time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, 0, nil
	}

	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid log retention %q (use a count or days, e.g. 10 or 7d)", s)
		}
		return 0, time.Duration(n) * 24 * time.Hour, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("invalid log retention %q (use a count or days, e.g. 10 or 7d)", s)
	}
	return n, 0, nil
}
