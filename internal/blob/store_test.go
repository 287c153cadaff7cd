package blob

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"finance/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "relatorio_03_2024_abcd1234.pdf", "application/pdf", []byte("%PDF-1.3")))

	obj, err := s.Get(ctx, "relatorio_03_2024_abcd1234.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), obj.Data)
	assert.Equal(t, "application/pdf", obj.ContentType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary upload files must not linger")
}

func TestFilesystemStoreMissing(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope.xlsx")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, core.ErrFileNotFound)
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"../etc/passwd", "a/b.pdf", "..", ".hidden", "", "x..y.pdf"} {
		_, err := s.Get(ctx, name)
		require.ErrorIs(t, err, core.ErrValidation, name)
		require.ErrorIs(t, s.Put(ctx, name, "", nil), core.ErrValidation, name)
	}
}

func TestNewNameIsUnique(t *testing.T) {
	pattern := regexp.MustCompile(`^transacoes_20240315_120000_[0-9a-f]{8}\.xlsx$`)

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := NewName("transacoes", "20240315_120000", "xlsx")
			mu.Lock()
			seen[name] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	for name := range seen {
		assert.Regexp(t, pattern, name)
		assert.True(t, ValidName(name))
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("a.PDF"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentTypeFor("a.xlsx"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ContentTypeFor("relatorio.DOCX"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.bin"))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Config{Backend: "s3"})
	require.Error(t, err)
}
