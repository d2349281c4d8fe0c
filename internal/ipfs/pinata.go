package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/config"
)

// Uploader pins files and JSON documents through the Pinata HTTP API
// and returns ipfs:// locators built from the resulting hashes.
type Uploader struct {
	fileEndpoint string
	jsonEndpoint string
	jwt          string
	hc           *http.Client
}

// NewUploader creates an Uploader from the pinning configuration
func NewUploader(cfg config.PinataConfig) *Uploader {
	return &Uploader{
		fileEndpoint: cfg.FileEndpoint,
		jsonEndpoint: cfg.JSONEndpoint,
		jwt:          cfg.JWT,
		hc:           &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether the upload credential is set. Mint refuses
// to start without it.
func (u *Uploader) Configured() bool {
	return u.jwt != ""
}

// pinResponse is the shared response shape of both pin endpoints
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinFile uploads file content under the given display name and returns
// its ipfs:// locator
func (u *Uploader) PinFile(ctx context.Context, name, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy file content: %w", err)
	}

	pinataMetadata, _ := json.Marshal(map[string]string{"name": name})
	if err := mw.WriteField("pinataMetadata", string(pinataMetadata)); err != nil {
		return "", fmt.Errorf("write pinataMetadata: %w", err)
	}
	pinataOptions, _ := json.Marshal(map[string]int{"cidVersion": 0})
	if err := mw.WriteField("pinataOptions", string(pinataOptions)); err != nil {
		return "", fmt.Errorf("write pinataOptions: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.fileEndpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build pin request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u.jwt)

	return u.do(req)
}

// PinJSON uploads a JSON document and returns its ipfs:// locator
func (u *Uploader) PinJSON(ctx context.Context, name string, content any) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"pinataMetadata": map[string]string{"name": name},
		"pinataContent":  content,
		"pinataOptions":  map[string]int{"cidVersion": 1},
	})
	if err != nil {
		return "", fmt.Errorf("marshal pin payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.jsonEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+u.jwt)

	return u.do(req)
}

func (u *Uploader) do(req *http.Request) (string, error) {
	resp, err := u.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("pin http status: %d", resp.StatusCode)
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", fmt.Errorf("decode pin response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing IpfsHash")
	}
	return locatorScheme + pinned.IpfsHash, nil
}
