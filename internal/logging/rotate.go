package logging

import (
	"fmt"
	"os"
	"sync"
)

const defaultMaxMB = 10

// rotatingWriter appends to path and, once a write would push the file past
// maxBytes, shifts path to path.1 (path.1 to path.2 and so on) and starts a
// fresh file. With zero backups the file is truncated in place.
type rotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	file     *os.File
	size     int64
}

func newRotatingWriter(path string, maxMB, backups int) (*rotatingWriter, error) {
	if maxMB <= 0 {
		maxMB = defaultMaxMB
	}
	if backups < 0 {
		backups = 0
	}
	w := &rotatingWriter{path: path, maxBytes: int64(maxMB) << 20, backups: backups}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file, w.size = f, info.Size()
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) rotate() error {
	_ = w.file.Close()
	w.file = nil
	if w.backups == 0 {
		if err := os.Truncate(w.path, 0); err != nil {
			return err
		}
		return w.open()
	}
	for i := w.backups - 1; i >= 1; i-- {
		src := backupName(w.path, i)
		if _, err := os.Stat(src); err == nil {
			if err := os.Rename(src, backupName(w.path, i+1)); err != nil {
				return err
			}
		}
	}
	if err := os.Rename(w.path, backupName(w.path, 1)); err != nil {
		return err
	}
	return w.open()
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
