package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanj/recorder-agent/internal/storage"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "123456_2024", SanitizeFilename("123456:2024"))
	assert.Equal(t, "a_b_c", SanitizeFilename(`a/b\c`))
	assert.Equal(t, "deed.2024-03", SanitizeFilename("deed.2024-03"))
	assert.Equal(t, "unknown", SanitizeFilename(""))
	assert.Equal(t, "unknown", SanitizeFilename("   "))
	assert.Equal(t, "unknown", SanitizeFilename("///"))
}

func TestArtifactRelPath(t *testing.T) {
	assert.Equal(t, filepath.Join("2024", "03", "123456_2024.pdf"), artifactRelPath("123456:2024", "03/10/2024"))
	assert.Equal(t, filepath.Join("2024", "03", "1.pdf"), artifactRelPath("1", "03/10/2024 09:15 AM"))
	assert.Equal(t, filepath.Join("unknown", "99.pdf"), artifactRelPath("99", "sometime in march"))
	assert.Equal(t, filepath.Join("unknown", "99.pdf"), artifactRelPath("99", ""))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting-popup", StateAwaitingPopup.String())
	assert.Equal(t, "popup-loaded", StatePopupLoaded.String())
	assert.Equal(t, "menu-opened", StateMenuOpened.String())
	assert.Equal(t, "awaiting-download", StateAwaitingDownload.String())
	assert.Equal(t, "saved", StateSaved.String())
	assert.Equal(t, "timed-out", StateTimedOut.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func writeDownload(t *testing.T, dir, guid string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, guid), data, 0644))
}

func TestPersist_MovesIntoDateTreeAndRepublishes(t *testing.T) {
	downloadDir := t.TempDir()
	artifactDir := t.TempDir()
	store, err := storage.NewDirStore(t.TempDir())
	require.NoError(t, err)

	c := NewCapturer(Options{Store: store, DownloadDir: downloadDir, ArtifactDir: artifactDir})
	writeDownload(t, downloadDir, "guid-1", []byte("%PDF-1.4 fake"))

	ref, err := c.persist(context.Background(), "123456:2024", "03/10/2024", "guid-1")
	require.NoError(t, err)

	local := filepath.Join(artifactDir, "2024", "03", "123456_2024.pdf")
	saved, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), saved)

	published, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), published)

	_, err = os.Stat(filepath.Join(downloadDir, "guid-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestPersist_NilStoreReturnsLocalPath(t *testing.T) {
	downloadDir := t.TempDir()
	artifactDir := t.TempDir()

	c := NewCapturer(Options{DownloadDir: downloadDir, ArtifactDir: artifactDir})
	writeDownload(t, downloadDir, "guid-2", []byte("bytes"))

	ref, err := c.persist(context.Background(), "77", "01/05/2024", "guid-2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(artifactDir, "2024", "01", "77.pdf"), ref)
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, nil
}

func TestPersist_StoreFailureFallsBackToLocalPath(t *testing.T) {
	downloadDir := t.TempDir()
	artifactDir := t.TempDir()

	c := NewCapturer(Options{Store: failingStore{}, DownloadDir: downloadDir, ArtifactDir: artifactDir})
	writeDownload(t, downloadDir, "guid-3", []byte("bytes"))

	ref, err := c.persist(context.Background(), "88", "02/05/2024", "guid-3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(artifactDir, "2024", "02", "88.pdf"), ref)
}

func TestPersist_MissingDownloadFails(t *testing.T) {
	c := NewCapturer(Options{DownloadDir: t.TempDir(), ArtifactDir: t.TempDir()})

	_, err := c.persist(context.Background(), "1", "01/01/2024", "no-such-guid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read downloaded file")
}
