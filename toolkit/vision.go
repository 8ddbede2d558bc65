package toolkit

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/model"
	"github.com/AlpaslanErdag/Orchestrator/tool"
)

const (
	// DefaultVisionModel is a multimodal model served by a local Ollama.
	DefaultVisionModel = "llama3.2-vision:11b"

	defaultVisionPrompt = "Describe this image in detail, focusing on any data, patterns, or key elements."
)

// VisionOptions configure the image analysis tool.
type VisionOptions struct {
	// Model is the multimodal model used for analysis.
	Model string
	// UploadsDir restricts which files may be analyzed; paths outside it are
	// rejected.
	UploadsDir string
}

// NewVisionTool returns the analyze_image tool. It reads an uploaded image,
// inlines it as a data URL and asks a multimodal model for a description.
// Only files inside the uploads directory are accepted.
func NewVisionTool(gateway model.Gateway, optFns ...func(o *VisionOptions)) *tool.FunctionTool {
	opts := VisionOptions{
		Model:      DefaultVisionModel,
		UploadsDir: "uploads",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return tool.NewFunctionTool(
		"analyze_image",
		"Analyze an uploaded image and return a detailed natural language description "+
			"of its contents, including any data, charts, or notable visual patterns.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"image_path": map[string]any{
					"type":        "string",
					"description": "Server-side path of the uploaded image file.",
				},
				"prompt": map[string]any{
					"type":        "string",
					"description": "Optional instruction for how to analyze the image.",
				},
			},
			"required": []string{"image_path"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			imagePath, _ := args["image_path"].(string)
			dataURL, err := loadImageDataURL(opts.UploadsDir, imagePath)
			if err != nil {
				return nil, err
			}

			prompt, _ := args["prompt"].(string)
			if prompt == "" {
				prompt = defaultVisionPrompt
			}

			userMsg := core.NewUserMessage(prompt)
			userMsg.ImageURL = dataURL

			resp, err := gateway.Complete(ctx, model.Request{
				Model:      opts.Model,
				Transcript: core.Transcript{userMsg},
			})
			if err != nil {
				return nil, fmt.Errorf("vision model: %w", err)
			}
			if strings.TrimSpace(resp.Text) == "" {
				return nil, fmt.Errorf("vision model returned no description")
			}
			return resp.Text, nil
		},
	)
}

// loadImageDataURL reads the image and encodes it as a base64 data URL,
// enforcing that the resolved path stays inside the uploads directory.
func loadImageDataURL(uploadsDir, imagePath string) (string, error) {
	root, err := filepath.Abs(uploadsDir)
	if err != nil {
		return "", fmt.Errorf("resolve uploads dir: %w", err)
	}
	resolved, err := filepath.Abs(imagePath)
	if err != nil {
		return "", fmt.Errorf("resolve image path: %w", err)
	}
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", &tool.ToolError{
			Tool:    "analyze_image",
			Message: "image path is not within the allowed uploads directory",
			Code:    tool.CodeValidation,
		}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(resolved)), ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("data:image/%s;base64,%s", ext, base64.StdEncoding.EncodeToString(data)), nil
}
