package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

const filePurpose = "answers"

// UploadFile stores the raw file in the provider's Files API.
func (c *Client) UploadFile(ctx context.Context, filename string, body io.Reader) (*domain.RemoteFile, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read file for upload: %w", err)
	}

	var raw []byte
	err = c.execute(ctx, "openai.files", func(callCtx context.Context) error {
		out, err := c.postMultipart(
			callCtx,
			"/files",
			map[string]string{"purpose": filePurpose},
			"file",
			filename,
			bytes.NewReader(data),
			"files",
		)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		return nil, asUpstreamError("files", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &domain.UpstreamError{Operation: "files", Body: string(raw), Err: fmt.Errorf("decode files response: %w", err)}
	}
	id, _ := decoded["id"].(string)
	if id == "" {
		return nil, &domain.UpstreamError{Operation: "files", Body: string(raw), Err: errors.New("files response has no id")}
	}
	return &domain.RemoteFile{
		ID:       id,
		Filename: filename,
		Raw:      decoded,
	}, nil
}
