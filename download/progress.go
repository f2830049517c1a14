package download

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// progressWriter is an io.Writer, logging streaming progress at most
// once per second if enabled. totalFn resolves the expected size
// lazily since it is unknown until response headers arrive.
type progressWriter struct {
	w           io.Writer
	logger      *slog.Logger
	transferred int64
	totalFn     func() int64
	startTime   time.Time
	lastLog     time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)

	if time.Since(pw.lastLog) >= time.Second {
		pw.lastLog = time.Now()
		pw.log("streaming")
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.startTime)
	progress := "?"
	if total := pw.totalFn(); total > 0 {
		progress = fmt.Sprintf("%.1f%%", float64(pw.transferred)/float64(total)*100)
	}
	attrs := []any{
		"progress", progress,
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pw.transferred,
		"mbps", fmt.Sprintf("%.2f", float64(pw.transferred)/elapsed.Seconds()/(1024*1024)),
	}
	pw.logger.Info(msg, attrs...)
}
