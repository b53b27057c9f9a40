// Package ipfs pins marketplace assets to IPFS through the Pinata pinning API.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/openmarket/marketplace-api/internal/adapter"
)

const (
	pinataAPIBase = "https://api.pinata.cloud"

	// GatewayURI prefixes every pinned hash handed back to clients
	GatewayURI = "https://gateway.pinata.cloud/ipfs/"
)

// PinOptions carries the Pinata pin metadata attached to a pin request
type PinOptions struct {
	// Name is the pinataMetadata display name
	Name string
	// Keyvalues are searchable pinataMetadata key-value pairs
	Keyvalues map[string]string
}

// PinResult is the Pinata pinning API response
type PinResult struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Pinner pins files and JSON documents to IPFS
//
//go:generate mockgen -source=pinata.go -destination=../mocks/pinner.go -package=mocks -mock_names=Pinner=MockPinner
type Pinner interface {
	// TestAuthentication verifies the configured credentials against the
	// pinning service
	TestAuthentication(ctx context.Context) error

	// PinFile pins the content read from r
	PinFile(ctx context.Context, r io.Reader, fileName string, opts PinOptions) (*PinResult, error)

	// PinJSON canonicalizes document and pins the resulting JSON
	PinJSON(ctx context.Context, document interface{}, opts PinOptions) (*PinResult, error)
}

// Config holds Pinata credentials
type Config struct {
	APIKey     string
	APISecret  string
	PinTimeout time.Duration
}

type pinataClient struct {
	cfg  Config
	http adapter.HTTPClient
	json adapter.JSON
}

// NewPinataClient creates a Pinner backed by the Pinata HTTP API
func NewPinataClient(cfg Config, httpClient adapter.HTTPClient, jsonCodec adapter.JSON) Pinner {
	return &pinataClient{cfg: cfg, http: httpClient, json: jsonCodec}
}

func (c *pinataClient) authHeaders() map[string]string {
	return map[string]string{
		"pinata_api_key":        c.cfg.APIKey,
		"pinata_secret_api_key": c.cfg.APISecret,
	}
}

// TestAuthentication verifies the configured credentials
func (c *pinataClient) TestAuthentication(ctx context.Context) error {
	var result struct {
		Message string `json:"message"`
	}
	if err := c.http.Get(ctx, pinataAPIBase+"/data/testAuthentication", c.authHeaders(), &result); err != nil {
		return fmt.Errorf("failed to authenticate with pinata: %w", err)
	}
	return nil
}

// PinFile pins the content read from r under the given file name
func (c *pinataClient) PinFile(ctx context.Context, r io.Reader, fileName string, opts PinOptions) (*PinResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart file field: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	metadata, err := c.metadataField(opts)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteField("pinataMetadata", metadata); err != nil {
		return nil, fmt.Errorf("failed to write pinataMetadata field: %w", err)
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":0}`); err != nil {
		return nil, fmt.Errorf("failed to write pinataOptions field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	ctx, cancel := c.withPinTimeout(ctx)
	defer cancel()

	respBody, err := c.http.Post(ctx, pinataAPIBase+"/pinning/pinFileToIPFS", writer.FormDataContentType(), c.authHeaders(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to pin file to ipfs: %w", err)
	}
	return c.decodeResult(respBody)
}

// PinJSON canonicalizes document and pins the resulting JSON. Canonical form
// keeps the pinned hash stable across re-pins of an equal document.
func (c *pinataClient) PinJSON(ctx context.Context, document interface{}, opts PinOptions) (*PinResult, error) {
	content, err := c.json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	canonical, err := jcs.Transform(content)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	metadata, err := c.metadataField(opts)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(`{"pinataContent":%s,"pinataMetadata":%s,"pinataOptions":{"cidVersion":0}}`,
		canonical, metadata)

	ctx, cancel := c.withPinTimeout(ctx)
	defer cancel()

	respBody, err := c.http.Post(ctx, pinataAPIBase+"/pinning/pinJSONToIPFS", "application/json", c.authHeaders(), bytes.NewReader([]byte(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to pin json to ipfs: %w", err)
	}
	return c.decodeResult(respBody)
}

func (c *pinataClient) metadataField(opts PinOptions) (string, error) {
	metadata := map[string]interface{}{
		"name": opts.Name,
	}
	if len(opts.Keyvalues) > 0 {
		metadata["keyvalues"] = opts.Keyvalues
	}
	encoded, err := c.json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin metadata: %w", err)
	}
	return string(encoded), nil
}

func (c *pinataClient) decodeResult(respBody []byte) (*PinResult, error) {
	var result PinResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode pin response: %w", err)
	}
	if result.IpfsHash == "" {
		return nil, fmt.Errorf("pin response missing hash: %s", string(respBody))
	}
	return &result, nil
}

func (c *pinataClient) withPinTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.PinTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.PinTimeout)
}
