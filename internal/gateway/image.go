package gateway

import (
	"context"
	"net/http"
)

const imageSize = "1024x1024"

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Images requests exactly one image per prompt. Generated images are not stored.
type Images struct {
	c     *client
	model string
}

func NewImages(cfg Config) *Images {
	return &Images{
		c:     newClient(cfg),
		model: cfg.Model,
	}
}

// Generate returns the URL of the generated image
func (g *Images) Generate(ctx context.Context, prompt string) (string, error) {
	req := imageRequest{
		Model:  g.model,
		Prompt: prompt,
		N:      1,
		Size:   imageSize,
	}

	var resp imageResponse
	if err := g.c.post(ctx, "/images/generations", req, &resp, rawBody); err != nil {
		return "", err
	}

	if len(resp.Data) == 0 {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: "upstream returned no images"}
	}

	return resp.Data[0].URL, nil
}
