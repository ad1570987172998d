package export

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/violations/internal/core/config"
)

// mockRoundTripper fakes the PutObject subset of S3 without network access.
type mockRoundTripper struct {
	objects map[string][]byte
	types   map[string]string
	status  int
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.status != 0 {
		return &http.Response{StatusCode: m.status, Body: io.NopCloser(strings.NewReader("<Error><Code>AccessDenied</Code></Error>")), Header: http.Header{}}, nil
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}

	key := strings.TrimPrefix(req.URL.Path, "/")
	body, _ := io.ReadAll(req.Body)
	if dec, ok := decodeChunked(body); ok {
		body = dec
	}
	m.objects[key] = body
	m.types[key] = req.Header.Get("Content-Type")

	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

// decodeChunked unwraps a single-chunk aws-chunked payload.
func decodeChunked(b []byte) ([]byte, bool) {
	head, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return nil, false
	}
	if i := bytes.IndexByte(head, ';'); i >= 0 {
		head = head[:i]
	}
	size, err := strconv.ParseInt(string(head), 16, 64)
	if err != nil || int64(len(rest)) < size {
		return nil, false
	}
	return rest[:size], true
}

func newMockSink(t *testing.T, dest string) (*S3Sink, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{objects: map[string][]byte{}, types: map[string]string{}}
	sink, err := NewS3Sink(context.Background(), dest, config.S3Config{
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return sink, rt
}

func TestS3Sink_Put(t *testing.T) {
	sink, rt := newMockSink(t, "s3://audit/ledger/exports/")

	res, err := Run(context.Background(), sink, FormatJSON, testRecords(), nil)
	require.NoError(t, err)

	assert.Equal(t, "s3://audit/ledger/exports/violations-export.json", res.Location)

	body, ok := rt.objects["audit/ledger/exports/violations-export.json"]
	require.True(t, ok, "object uploaded under bucket/prefix path")
	assert.Contains(t, string(body), `"id": "r1"`)
	assert.Equal(t, "application/json", rt.types["audit/ledger/exports/violations-export.json"])
}

func TestS3Sink_Key(t *testing.T) {
	sink, _ := newMockSink(t, "s3://audit")
	assert.Equal(t, "violations-export.xlsx", sink.Key(FormatXLSX.FileName()))
}

func TestS3Sink_PutError(t *testing.T) {
	sink, rt := newMockSink(t, "s3://audit")
	rt.status = http.StatusForbidden

	_, err := sink.Put(context.Background(), "x.json", []byte("{}"), "application/json")
	require.ErrorContains(t, err, "put s3://audit/x.json")
}

func TestNewS3Sink_BadURL(t *testing.T) {
	_, err := NewS3Sink(context.Background(), "https://audit", config.S3Config{})
	require.Error(t, err)
}
