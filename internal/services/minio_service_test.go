package services

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type recordedRequest struct {
	method string
	path   string
}

type MinioStorageTestSuite struct {
	suite.Suite
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	storage  ObjectStorage
}

func (suite *MinioStorageTestSuite) SetupTest() {
	suite.requests = nil
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.mu.Lock()
		suite.requests = append(suite.requests, recordedRequest{method: r.Method, path: r.URL.Path})
		suite.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	endpoint := strings.TrimPrefix(suite.server.URL, "http://")
	storage, err := NewMinioStorage(endpoint, "access", "secret", "hardware-backups", false)
	suite.Require().NoError(err)
	suite.storage = storage
}

func (suite *MinioStorageTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *MinioStorageTestSuite) TestEnsureBucketExists_Found() {
	err := suite.storage.EnsureBucketExists(context.Background())
	suite.NoError(err)

	suite.Require().Len(suite.requests, 1)
	suite.Equal(http.MethodHead, suite.requests[0].method)
	suite.True(strings.HasPrefix(suite.requests[0].path, "/hardware-backups"))
}

func (suite *MinioStorageTestSuite) TestUpload() {
	data := []byte(`{"version":"1.0"}`)
	err := suite.storage.Upload(context.Background(), "backup.json", bytes.NewReader(data), int64(len(data)), "application/json")
	suite.NoError(err)

	suite.Require().NotEmpty(suite.requests)
	last := suite.requests[len(suite.requests)-1]
	suite.Equal(http.MethodPut, last.method)
	suite.Equal("/hardware-backups/backup.json", last.path)
}

func (suite *MinioStorageTestSuite) TestPresignedURL() {
	url, err := suite.storage.GetPresignedURL(context.Background(), "backup.json", time.Hour)
	suite.NoError(err)
	suite.Contains(url, "hardware-backups/backup.json")
	suite.Contains(url, "X-Amz-Signature")
}

func TestMinioStorageTestSuite(t *testing.T) {
	suite.Run(t, new(MinioStorageTestSuite))
}
