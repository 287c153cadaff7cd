// Package blob stores generated export files until they are downloaded.
package blob

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"finance/internal/core"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no object has the requested name.
var ErrNotFound = fmt.Errorf("%w: blob", core.ErrFileNotFound)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Object is a stored file with its content type.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store persists export files keyed by name.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
	Get(ctx context.Context, name string) (*Object, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend   string // filesystem | azure
	Dir       string
	AzureURL  string
	Container string
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "filesystem":
		return NewFilesystemStore(cfg.Dir)
	case "azure":
		return NewAzureStore(ctx, cfg.AzureURL, cfg.Container)
	default:
		return nil, fmt.Errorf("unknown export backend %q", cfg.Backend)
	}
}

// NewName returns "<prefix>_<stamp>_<8 hex chars>.<ext>". The random suffix
// keeps concurrent exports of the same period from overwriting each other.
func NewName(prefix, stamp, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix, stamp, strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
}

// ValidName reports whether name is a plain file name that cannot escape the
// store's namespace.
func ValidName(name string) bool {
	return len(name) <= 255 && validName.MatchString(name) && !strings.Contains(name, "..")
}

// ContentTypeFor guesses the content type from the file extension.
func ContentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func checkName(name string) error {
	if !ValidName(name) {
		return core.Validationf("invalid file name %q", name)
	}
	return nil
}
