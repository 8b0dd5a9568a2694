package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
)

// Gateway calls an OpenAI-compatible vision model over chat completions and
// normalizes the reply into a DamageReport. One submission means one fresh
// call; there is no caching, deduplication or retrying here.
type Gateway struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	log     *logrus.Logger
}

// NewGateway wires the credentials supplied at process start. timeout bounds
// the whole external call, including image upload.
func NewGateway(apiKey, model, baseURL string, timeout time.Duration, log *logrus.Logger) *Gateway {
	return &Gateway{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Analyze sends the before/after image files and the car metadata to the
// model and returns the normalized report. Transport failures, timeouts and
// non-2xx statuses come back as AIServiceError; an unparsable reply as
// AIResponseError.
func (g *Gateway) Analyze(ctx context.Context, beforePaths, afterPaths []string, car CarMeta) (*entity.DamageReport, error) {
	content := []any{
		map[string]any{"type": "text", "text": userMessage(car, len(beforePaths), len(afterPaths))},
	}
	for _, p := range append(append([]string{}, beforePaths...), afterPaths...) {
		part, err := imagePart(p)
		if err != nil {
			return nil, err
		}
		content = append(content, part)
	}

	body := map[string]any{
		"model": g.model,
		"messages": []any{
			map[string]any{"role": "system", "content": analysisPrompt},
			map[string]any{"role": "user", "content": content},
		},
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAIService, err, "encode analysis request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAIService, err, "build analysis request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	g.log.WithFields(logrus.Fields{
		"model":  g.model,
		"before": len(beforePaths),
		"after":  len(afterPaths),
	}).Info("sending damage analysis request")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAIService, err, "vision model call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.New(apperr.KindAIService, "vision model returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperr.Wrap(apperr.KindAIResponse, err, "decode vision model reply")
	}
	if len(raw.Choices) == 0 {
		return nil, apperr.New(apperr.KindAIResponse, "vision model reply has no choices")
	}

	report, err := parseReport(raw.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"damages":    len(report.NewDamage),
		"total_cost": report.TotalEstimatedCostUSD,
	}).Info("damage analysis complete")
	return report, nil
}

// imagePart loads one image file as a base64 data-URL content part.
func imagePart(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "read image for analysis")
	}
	mime := http.DetectContentType(data)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	return map[string]any{
		"type":      "image_url",
		"image_url": map[string]any{"url": dataURL, "detail": "high"},
	}, nil
}
