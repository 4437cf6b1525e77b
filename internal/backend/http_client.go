package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const snippetLimit = 512

type httpClient struct {
	endpoint string
	discard  string
	client   *http.Client
}

func (c *httpClient) Endpoint() string {
	return c.endpoint
}

func (c *httpClient) Submit(ctx context.Context, sub Submission) (Response, error) {
	body, contentType, err := encodeSubmission(sub)
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, wrapTransport(ctx, err)
	}
	return decodeResponse(resp, raw)
}

func (c *httpClient) Discard(ctx context.Context, workspaceID string) error {
	payload, err := json.Marshal(map[string]string{"workspace_id": workspaceID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.discard, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
		return fmt.Errorf("discard workspace %s: %s (%s)", workspaceID, resp.Status, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// encodeSubmission builds the multipart body. At most one file part is
// written, under the mode's field name.
func encodeSubmission(sub Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"initial_prompt", sub.Prompt},
		{"mode", sub.Mode.String()},
		{"workspace_id", sub.WorkspaceID},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}

	if sub.Attachment != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, sub.Mode.AttachmentField(), sub.Attachment.Name))
		mediaType := sub.Attachment.MediaType
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		header.Set("Content-Type", mediaType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(sub.Attachment.Content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// decodeResponse requires a JSON body whatever the status code; the backend
// reports application failures as JSON with 4xx/5xx statuses.
func decodeResponse(resp *http.Response, raw []byte) (Response, error) {
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return Response{}, &MalformedResponseError{
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Snippet:     snippet(raw),
		}
	}
	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, &MalformedResponseError{
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Snippet:     snippet(raw),
			Err:         err,
		}
	}
	return parsed, nil
}

func snippet(raw []byte) string {
	if len(raw) > snippetLimit {
		raw = raw[:snippetLimit]
	}
	return strings.TrimSpace(string(raw))
}
