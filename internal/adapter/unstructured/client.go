package unstructured

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tanvigunjal/Multimodal-RAG/internal/element"
)

// Client talks to an unstructured-io style partition service. The service
// receives the raw document and returns an ordered JSON array of typed
// elements; extracted images come back base64-encoded and are written to
// the figures directory by this client.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// partitionElement mirrors the partition API response schema.
type partitionElement struct {
	ElementID string `json:"element_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	Metadata  struct {
		PageNumber  *int   `json:"page_number"`
		TextAsHTML  string `json:"text_as_html"`
		ImageBase64 string `json:"image_base64"`
		ImageMime   string `json:"image_mime_type"`
	} `json:"metadata"`
}

// Partition uploads the document at path and returns its elements in
// document order. Extracted images are written under imageDir and their
// paths recorded on the corresponding elements.
func (c *Client) Partition(ctx context.Context, path, imageDir string) ([]element.Element, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	_ = mw.WriteField("strategy", "hi_res")
	_ = mw.WriteField("extract_image_block_types", `["Image"]`)
	_ = mw.WriteField("infer_table_structure", "true")
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := c.baseURL + "/general/v0/general"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("partition request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("partition service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var raw []partitionElement
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode partition response: %w", err)
	}

	return c.convert(raw, path, imageDir)
}

func (c *Client) convert(raw []partitionElement, docPath, imageDir string) ([]element.Element, error) {
	elements := make([]element.Element, 0, len(raw))
	imageIndex := 0

	for i, r := range raw {
		el := element.Element{
			ID:         r.ElementID,
			Text:       r.Text,
			PageNumber: r.Metadata.PageNumber,
		}
		if el.ID == "" {
			el.ID = fmt.Sprintf("%s-el-%d", strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath)), i)
		}

		switch r.Type {
		case "Title":
			el.Kind = element.KindTitle
		case "Table":
			el.Kind = element.KindTable
			el.TableHTML = r.Metadata.TextAsHTML
		case "Image", "Figure":
			el.Kind = element.KindImage
			if r.Metadata.ImageBase64 != "" {
				p, err := c.writeImage(r.Metadata.ImageBase64, r.Metadata.ImageMime, imageDir, docPath, imageIndex)
				if err != nil {
					slog.Warn("failed to persist extracted image", "document", docPath, "index", imageIndex, "error", err)
				} else {
					el.ImagePath = p
				}
				imageIndex++
			}
		default:
			// NarrativeText, ListItem, UncategorizedText and friends all
			// flow into the text buffer.
			el.Kind = element.KindText
		}

		elements = append(elements, el)
	}
	return elements, nil
}

func (c *Client) writeImage(b64, mimeType, imageDir, docPath string, index int) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	ext := ".png"
	if strings.Contains(mimeType, "jpeg") || strings.Contains(mimeType, "jpg") {
		ext = ".jpg"
	}

	docID := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	name := fmt.Sprintf("%s_figure_%d%s", docID, index, ext)
	target := filepath.Join(imageDir, name)

	if err := os.MkdirAll(imageDir, 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", err
	}
	return target, nil
}
