package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/qrmenu/config"
)

// Open builds the disk named by driver ("s3" or "local") from config.
func Open(ctx context.Context, driver string) (Disk, error) {
	switch driver {
	case "local":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
	case "", "none":
		return nil, ErrDiskNotConfigured
	default:
		return nil, fmt.Errorf("%w: unknown STORAGE_DISK %q", ErrDiskNotConfigured, driver)
	}
}
