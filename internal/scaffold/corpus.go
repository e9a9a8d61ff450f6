package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TemplateFile is one enumerated file of the template corpus. Binary files
// are copied byte-for-byte; text files undergo variable substitution.
type TemplateFile struct {
	// RelPath is slash-separated and relative to the corpus root.
	RelPath string
	AbsPath string
	Binary  bool
}

// binaryExtensions short-circuits content sniffing for well-known formats.
var binaryExtensions = map[string]struct{}{
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".ico":   {},
	".pdf":   {},
	".zip":   {},
	".gz":    {},
	".tar":   {},
	".woff":  {},
	".woff2": {},
}

// ReadCorpus enumerates the template corpus under root in lexical order. A
// missing corpus root yields an empty listing rather than an error, so
// planning still works before any templates are installed.
func ReadCorpus(root string) ([]TemplateFile, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat template corpus: %w", err)
	}

	var files []TemplateFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		binary, err := isBinaryFile(path)
		if err != nil {
			return fmt.Errorf("classify template %s: %w", rel, err)
		}
		files = append(files, TemplateFile{
			RelPath: filepath.ToSlash(rel),
			AbsPath: path,
			Binary:  binary,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk template corpus: %w", err)
	}
	return files, nil
}

func isBinaryFile(path string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := binaryExtensions[ext]; ok {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}
