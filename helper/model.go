package helper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

const (
	// DefaultLocalEmbeddingModel produces 384-dimensional embeddings.
	DefaultLocalEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultLocalEmbeddingDim   = 384

	// DefaultLocalOnnxFile selects one of the several onnx exports the default model ships.
	DefaultLocalOnnxFile = "onnx/model.onnx"
)

// OnnxFileFor returns onnxFilePath, or the pinned export of the default model when it is empty.
func OnnxFileFor(modelName string, onnxFilePath string) string {
	if onnxFilePath == "" && modelName == DefaultLocalEmbeddingModel {
		return DefaultLocalOnnxFile
	}
	return onnxFilePath
}

// PrepareModel downloads the model if it doesn't exist and returns the model path
func PrepareModel(modelName string, onnxFilePath string) (string, error) {
	modelDir := "./models"
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	// Check if model exists, if not download it
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0750); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		if onnxFile := OnnxFileFor(modelName, onnxFilePath); onnxFile != "" {
			downloadOptions.OnnxFilePath = onnxFile
		}
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}
