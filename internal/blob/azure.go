package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Well-known development account of the Azurite emulator.
const (
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// AzureStore keeps objects as block blobs in one container.
type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore connects to serviceURL. Plain http URLs are treated as a
// local Azurite emulator and use its shared key; anything else authenticates
// with DefaultAzureCredential.
func NewAzureStore(ctx context.Context, serviceURL, container string) (*AzureStore, error) {
	if serviceURL == "" {
		return nil, fmt.Errorf("azure blob service URL is required")
	}
	if container == "" {
		container = "exports"
	}

	var client *azblob.Client
	if isLocal(serviceURL) {
		slog.Info("Using Azurite shared key credentials for blob store", "url", serviceURL)
		cred, err := azblob.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create blob client with shared key: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create blob client: %w", err)
		}
	}

	if _, err := client.CreateContainer(ctx, container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		slog.Warn("Failed to create export container", "container", container, "error", err)
	}

	slog.Info("Blob store initialized", "backend", "azure", "container", container)
	return &AzureStore{client: client, container: container}, nil
}

func (s *AzureStore) Put(ctx context.Context, name, contentType string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	if contentType == "" {
		contentType = ContentTypeFor(name)
	}

	_, err := s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload blob %s/%s: %w", s.container, name, err)
	}

	slog.DebugContext(ctx, "Export stored", "backend", "azure", "container", s.container, "name", name, "size_bytes", len(data))
	return nil
}

func (s *AzureStore) Get(ctx context.Context, name string) (*Object, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("download blob %s/%s: %w", s.container, name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s/%s: %w", s.container, name, err)
	}

	contentType := ContentTypeFor(name)
	if resp.ContentType != nil && *resp.ContentType != "" {
		contentType = *resp.ContentType
	}
	return &Object{Name: name, ContentType: contentType, Data: data}, nil
}

func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}
