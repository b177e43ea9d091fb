package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/leaflens/leaflens/internal/models"
	"github.com/leaflens/leaflens/internal/plantinfo"
	"go.uber.org/zap"
)

// Identify uploads an image for classification. The response carries the
// plant metadata already localized to languageCode, plus an optional audio
// rendition and the URL the backend serves the image back under.
func (c *Client) Identify(ctx context.Context, image []byte, filename, languageCode string) (models.IdentificationResult, error) {
	if len(image) == 0 {
		return models.IdentificationResult{}, &RequestError{Kind: RequestRejected, Message: "no image provided"}
	}
	if languageCode == "" {
		languageCode = "en"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return models.IdentificationResult{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return models.IdentificationResult{}, fmt.Errorf("build upload: %w", err)
	}
	if err := w.WriteField("language", languageCode); err != nil {
		return models.IdentificationResult{}, fmt.Errorf("build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.IdentificationResult{}, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identify", &body)
	if err != nil {
		return models.IdentificationResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.IdentificationResult{}, &RequestError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.IdentificationResult{}, &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.IdentificationResult{}, &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Message: apiMessage(data)}
	}

	var result models.IdentificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return models.IdentificationResult{}, &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
	}
	result.CreatedAt = time.Now()

	c.log.Debug("identified plant",
		zap.String("plant", result.PlantName),
		zap.Float64("confidence", result.Confidence),
		zap.String("language", languageCode),
	)
	return result, nil
}

// Translate converts an info map into languageCode. "en" short-circuits with
// the input untouched and no network call. The policy is fail soft: on any
// failure the original map comes back unchanged and the returned bool is
// false — translation is an enhancement, not a correctness-critical path, so
// no error crosses this boundary.
func (c *Client) Translate(ctx context.Context, info plantinfo.InfoMap, languageCode string) (plantinfo.InfoMap, bool) {
	if languageCode == "" || languageCode == "en" {
		return info, true
	}
	if info.Len() == 0 {
		return info, false
	}

	ctx, cancel := context.WithTimeout(ctx, translateTimeout)
	defer cancel()

	var translated plantinfo.InfoMap
	err := c.postJSON(ctx, "/translate", map[string]any{
		"content":  info,
		"language": languageCode,
	}, &translated)
	if err != nil {
		c.log.Warn("translation failed, keeping original content",
			zap.String("language", languageCode), zap.Error(err))
		return info, false
	}
	if translated.Len() == 0 {
		c.log.Warn("empty translation response, keeping original content",
			zap.String("language", languageCode))
		return info, false
	}
	return translated, true
}

// SynthesizeSpeech renders an info map as spoken audio in languageCode.
// Unlike Translate this fails hard: the caller must observe the failure and
// must not pair a previous audio payload with new text.
func (c *Client) SynthesizeSpeech(ctx context.Context, info plantinfo.InfoMap, languageCode string) ([]byte, error) {
	if info.Len() == 0 {
		return nil, &RequestError{Kind: RequestRejected, Message: "no content to speak"}
	}
	if languageCode == "" {
		languageCode = "en"
	}

	var resp struct {
		AudioBase64 string `json:"audioBase64"`
	}
	err := c.postJSON(ctx, "/tts", map[string]any{
		"info":     info,
		"language": languageCode,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AudioBase64 == "" {
		return nil, &RequestError{Kind: RequestRejected, Message: "empty audio response"}
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		return nil, &RequestError{Kind: RequestRejected, Err: fmt.Errorf("decode audio: %w", err)}
	}
	return audio, nil
}
