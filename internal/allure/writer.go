package allure

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"allure-reporter/pkg/logging"
)

const (
	resultSuffix    = "-result.json"
	containerSuffix = "-container.json"
	attachmentInfix = "-attachment."

	environmentFileName = "environment.properties"
	executorFileName    = "executor.json"
)

// ResultWriter persists Allure files. FileWriter is the production
// implementation; tests may substitute an in-memory one.
type ResultWriter interface {
	// Dir returns the results directory.
	Dir() string
	// Prepare creates the results directory, removing its contents first when clean is set.
	Prepare(clean bool) error
	WriteResult(result *TestResult) error
	WriteContainer(container *TestResultContainer) error
	// WriteAttachment stores data under the given attachment source name.
	WriteAttachment(source string, data []byte) error
	// CopyAttachment copies the file at path under the given attachment source name.
	CopyAttachment(source string, path string) error
	// Remove deletes a previously written file by name. Missing files are not an error.
	Remove(name string) error
	WriteEnvironment(env map[string]string) error
	WriteExecutor(executor *Executor) error
}

// ResultFileName returns the file name of the result with the given uuid.
func ResultFileName(uuid string) string {
	return uuid + resultSuffix
}

// ContainerFileName returns the file name of the container with the given uuid.
func ContainerFileName(uuid string) string {
	return uuid + containerSuffix
}

// AttachmentSource returns the file name used for an attachment payload.
func AttachmentSource(uuid, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = unknownExtension
	}
	return uuid + attachmentInfix + ext
}

// FileWriter writes Allure files into a single directory.
type FileWriter struct {
	mu  sync.Mutex
	dir string
}

// NewFileWriter creates a FileWriter rooted at dir. The directory is not
// touched until Prepare is called.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// Dir returns the results directory.
func (w *FileWriter) Dir() string {
	return w.dir
}

// Prepare creates the results directory. When clean is set every entry
// already in the directory is removed first.
func (w *FileWriter) Prepare(clean bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dir == "" {
		return fmt.Errorf("results directory is not set")
	}

	if clean {
		entries, err := os.ReadDir(w.dir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read results directory %s: %w", w.dir, err)
		}
		for _, entry := range entries {
			p := filepath.Join(w.dir, entry.Name())
			if err := os.RemoveAll(p); err != nil {
				return fmt.Errorf("failed to clean %s: %w", p, err)
			}
		}
		if len(entries) > 0 {
			logging.Debug("Writer", "Removed %d entries from %s", len(entries), w.dir)
		}
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory %s: %w", w.dir, err)
	}
	return nil
}

// WriteResult writes result to <uuid>-result.json.
func (w *FileWriter) WriteResult(result *TestResult) error {
	if result.UUID == "" {
		return fmt.Errorf("result %q has no uuid", result.Name)
	}
	return w.writeJSON(ResultFileName(result.UUID), result)
}

// WriteContainer writes container to <uuid>-container.json.
func (w *FileWriter) WriteContainer(container *TestResultContainer) error {
	if container.UUID == "" {
		return fmt.Errorf("container %q has no uuid", container.Name)
	}
	return w.writeJSON(ContainerFileName(container.UUID), container)
}

// WriteAttachment writes data as the attachment file named source.
func (w *FileWriter) WriteAttachment(source string, data []byte) error {
	return w.writeFile(source, data)
}

// CopyAttachment copies the file at path into the results directory as source.
func (w *FileWriter) CopyAttachment(source string, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open attachment file %s: %w", path, err)
	}
	defer in.Close()

	w.mu.Lock()
	defer w.mu.Unlock()

	target := filepath.Join(w.dir, source)
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", path, target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", target, err)
	}
	return nil
}

// Remove deletes the file name from the results directory.
func (w *FileWriter) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := os.Remove(filepath.Join(w.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// WriteEnvironment writes env as environment.properties, keys sorted.
func (w *FileWriter) WriteEnvironment(env map[string]string) error {
	if len(env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(escapeProperty(k, true))
		b.WriteByte('=')
		b.WriteString(escapeProperty(env[k], false))
		b.WriteByte('\n')
	}
	return w.writeFile(environmentFileName, []byte(b.String()))
}

// WriteExecutor writes executor.json.
func (w *FileWriter) WriteExecutor(executor *Executor) error {
	if executor == nil {
		return nil
	}
	return w.writeJSON(executorFileName, executor)
}

func (w *FileWriter) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return w.writeFile(name, data)
}

func (w *FileWriter) writeFile(name string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := filepath.Join(w.dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	logging.Debug("Writer", "Wrote %s (%d bytes)", name, len(data))
	return nil
}

// escapeProperty escapes a key or value for a Java properties file.
func escapeProperty(s string, key bool) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '=', ':', '#', '!':
			b.WriteByte('\\')
			b.WriteRune(r)
		case ' ':
			if key {
				b.WriteString(`\ `)
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
