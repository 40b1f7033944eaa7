package storage

import (
	"testing"

	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	store, err := New(config.StorageConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNewValidates(t *testing.T) {
	_, err := New(config.StorageConfig{Enabled: true, Endpoint: "localhost:9000"})
	assert.Error(t, err)

	_, err = New(config.StorageConfig{Enabled: true, Driver: "ftp", Endpoint: "x", AccessKey: "a", SecretKey: "b", Bucket: "c"})
	assert.Error(t, err)
}

func TestNewMinio(t *testing.T) {
	store, err := New(config.StorageConfig{
		Enabled:   true,
		Driver:    DriverMinio,
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "reports",
	})
	require.NoError(t, err)
	assert.IsType(t, &MinioClient{}, store)
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://files.example.com/", false)
	assert.Equal(t, "files.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.True(t, secure)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://s3.example.com", endpointURL("s3.example.com", true))
	assert.Equal(t, "http://s3.example.com", endpointURL("//s3.example.com", false))
	assert.Equal(t, "http://already", endpointURL("http://already", true))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "", PublicURL("", "reports/a.html"))
	assert.Equal(t, "https://cdn.example.com/reports/a.html", PublicURL("https://cdn.example.com/", "/reports/a.html"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Contains(t, contentTypeFor("reports/atim_report.html"), "text/html")
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob"))
}
