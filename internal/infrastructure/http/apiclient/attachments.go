package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

// UploadAttachment streams r to the ticket as a multipart "file" field.
func (c *Client) UploadAttachment(ctx context.Context, token string, ticketID int64, filename string, r io.Reader) (*domain.Attachment, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var result struct {
		Attachment *domain.Attachment `json:"attachment"`
	}
	err := c.Do(ctx, ticketPath(ticketID, "/attachments"), Request{
		Method:  http.MethodPost,
		Token:   token,
		Body:    pr,
		Headers: http.Header{"Content-Type": {mw.FormDataContentType()}},
	}, &result)
	// Unblocks the writer goroutine when the request failed before the
	// body was fully consumed.
	_ = pr.Close()
	if err != nil {
		return nil, err
	}
	if result.Attachment == nil {
		return nil, fmt.Errorf("upload attachment: empty attachment in response")
	}
	return result.Attachment, nil
}

// DownloadAttachment copies the attachment's bytes to w and returns the
// number of bytes written.
func (c *Client) DownloadAttachment(ctx context.Context, token string, attachmentID int64, w io.Writer) (int64, error) {
	endpoint := fmt.Sprintf("/attachments/%d/download", attachmentID)
	resp, err := c.send(ctx, endpoint, Request{
		Token:   token,
		Headers: http.Header{"Accept": {"*/*"}},
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download attachment %d: %w", attachmentID, err)
	}
	return n, nil
}
