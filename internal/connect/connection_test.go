package connect

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/servicehub/internal/config"
	"github.com/joshua-takyi/servicehub/internal/storage"
)

func TestRedisConnect(t *testing.T) {
	rdb, err := RedisConnect(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, rdb, "no address means no client")

	mr := miniredis.RunT(t)
	rdb, err = RedisConnect(&config.Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	addr := mr.Addr()
	mr.Close()
	_, err = RedisConnect(&config.Config{RedisAddr: addr})
	assert.Error(t, err)
}

func TestNewUploader(t *testing.T) {
	dir := t.TempDir()
	up, err := NewUploader(&config.Config{UploadDriver: config.UploadDriverDisk, UploadDir: dir})
	require.NoError(t, err)
	disk, ok := up.(*storage.DiskUploader)
	require.True(t, ok)
	assert.Equal(t, dir, disk.Dir())

	up, err = NewUploader(&config.Config{
		UploadDriver:        config.UploadDriverCloudinary,
		CloudinaryCloudName: "demo",
		CloudinaryAPIKey:    "key",
		CloudinaryAPISecret: "secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &storage.CloudinaryUploader{}, up)

	_, err = NewUploader(&config.Config{UploadDriver: "ftp"})
	assert.Error(t, err)
}
