package blobclient

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/yourorg/pdf2json/pkg/logging"
)

// AzureBlobClient implements BlobClient on one Azure Blob Storage container.
type AzureBlobClient struct {
	client      *azblob.Client
	logger      logging.Logger
	accountName string
	container   string
}

// AzureConfig holds the account settings for NewAzureBlobClient.
type AzureConfig struct {
	AccountName string
	// AccountKey is ignored when UseManagedIdentity is set; an empty key also
	// selects the default Azure credential chain.
	AccountKey         string
	Container          string
	UseManagedIdentity bool
}

// NewAzureBlobClient creates the client and makes sure the container exists.
func NewAzureBlobClient(ctx context.Context, cfg AzureConfig, logger logging.Logger) (*AzureBlobClient, error) {
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)

	var client *azblob.Client
	if cfg.UseManagedIdentity || cfg.AccountKey == "" {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
		}
	} else {
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
		}
	}

	if _, err := client.CreateContainer(ctx, cfg.Container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container %s: %w", cfg.Container, err)
	}

	return &AzureBlobClient{
		client:      client,
		logger:      logger.With(logging.NewField("container", cfg.Container)),
		accountName: cfg.AccountName,
		container:   cfg.Container,
	}, nil
}

func (a *AzureBlobClient) url(name string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", a.accountName, a.container, name)
}

// Upload streams data into the container.
func (a *AzureBlobClient) Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	logger := a.logger.With(
		logging.NewField("operation", "blob.upload"),
		logging.NewField("blob", name),
	)

	opts := &azblob.UploadStreamOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}

	if _, err := a.client.UploadStream(ctx, a.container, name, data, opts); err != nil {
		logger.Error("Failed to upload blob", logging.NewField("error", err))
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}

	logger.Debug("Blob uploaded")
	return a.url(name), nil
}

// Get downloads a blob.
func (a *AzureBlobClient) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
		}
		a.logger.Error("Failed to download blob", logging.NewField("blob", name), logging.NewField("error", err))
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}

// Delete removes a blob.
func (a *AzureBlobClient) Delete(ctx context.Context, name string) error {
	if _, err := a.client.DeleteBlob(ctx, a.container, name, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, name)
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Exists reads the blob properties to check existence.
func (a *AzureBlobClient) Exists(ctx context.Context, name string) (bool, error) {
	_, err := a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blob existence: %w", err)
	}
	return true, nil
}

// List pages through the container listing.
func (a *AzureBlobClient) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})

	var blobs []BlobInfo
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := BlobInfo{Name: *item.Name, URL: a.url(*item.Name)}
			if props := item.Properties; props != nil {
				if props.ContentLength != nil {
					info.Size = *props.ContentLength
				}
				if props.ContentType != nil {
					info.ContentType = *props.ContentType
				}
				if props.LastModified != nil {
					info.LastModified = *props.LastModified
				}
			}
			blobs = append(blobs, info)
		}
	}

	return blobs, nil
}
