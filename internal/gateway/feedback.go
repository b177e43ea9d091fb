package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Feedback is one user-submitted report. Name and Email are optional; the
// backend records "Anonymous" when no name is given. Screenshot, when set,
// switches the submission to a multipart upload.
type Feedback struct {
	Name           string
	Email          string
	Type           string
	Text           string
	Rating         int
	Screenshot     []byte
	ScreenshotName string
}

// SubmitFeedback sends a feedback report and returns the id the backend
// assigned to it. Text is required; everything else is optional.
func (c *Client) SubmitFeedback(ctx context.Context, fb Feedback) (string, error) {
	if fb.Text == "" {
		return "", &RequestError{Kind: RequestRejected, Message: "feedback text is required"}
	}
	if fb.Type == "" {
		fb.Type = "general"
	}

	var resp struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if fb.Screenshot == nil {
		err := c.postJSON(ctx, "/submit_feedback", map[string]any{
			"name":         fb.Name,
			"email":        fb.Email,
			"feedbackType": fb.Type,
			"feedbackText": fb.Text,
			"rating":       fb.Rating,
		}, &resp)
		if err != nil {
			return "", err
		}
	} else if err := c.postFeedbackForm(ctx, fb, &resp); err != nil {
		return "", err
	}

	c.log.Debug("feedback submitted", zap.String("id", resp.ID), zap.String("type", fb.Type))
	return resp.ID, nil
}

// postFeedbackForm is the multipart variant carrying a screenshot.
func (c *Client) postFeedbackForm(ctx context.Context, fb Feedback, out any) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":         fb.Name,
		"email":        fb.Email,
		"feedbackType": fb.Type,
		"feedbackText": fb.Text,
		"rating":       strconv.Itoa(fb.Rating),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("build feedback form: %w", err)
		}
	}

	name := fb.ScreenshotName
	if name == "" {
		name = "screenshot.png"
	}
	part, err := w.CreateFormFile("screenshot", name)
	if err != nil {
		return fmt.Errorf("build feedback form: %w", err)
	}
	if _, err := part.Write(fb.Screenshot); err != nil {
		return fmt.Errorf("build feedback form: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("build feedback form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit_feedback", &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Message: apiMessage(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}
