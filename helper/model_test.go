package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareModel(t *testing.T) {
	t.Run("Return existing model path with sanitized name", func(t *testing.T) {
		expectedPath := filepath.Join("./models", "test_mock-embedder")
		require.NoError(t, os.MkdirAll(expectedPath, 0750))
		defer os.RemoveAll(expectedPath)

		path, err := PrepareModel("test/mock-embedder", "")
		assert.NoError(t, err, "Expected PrepareModel to not return an error for an existing model")
		assert.Equal(t, expectedPath, path)
	})

	t.Run("Return existing model path ignoring onnx file path", func(t *testing.T) {
		expectedPath := filepath.Join("./models", "plain-model")
		require.NoError(t, os.MkdirAll(expectedPath, 0750))
		defer os.RemoveAll(expectedPath)

		path, err := PrepareModel("plain-model", "onnx/model.onnx")
		assert.NoError(t, err)
		assert.Equal(t, expectedPath, path)
	})

	t.Run("Download default model with pinned onnx export", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping model download in short mode")
		}

		path, err := PrepareModel(DefaultLocalEmbeddingModel, "")
		if err != nil {
			require.NotContains(t, err.Error(), "multiple .onnx files", "Expected the default model to pin its onnx export")
			t.Skipf("Model hub not reachable: %v", err)
		}
		assert.DirExists(t, path)
	})
}

func TestOnnxFileFor(t *testing.T) {
	t.Run("Default model is pinned", func(t *testing.T) {
		assert.Equal(t, DefaultLocalOnnxFile, OnnxFileFor(DefaultLocalEmbeddingModel, ""))
	})

	t.Run("Explicit path wins", func(t *testing.T) {
		assert.Equal(t, "onnx/model_quantized.onnx", OnnxFileFor(DefaultLocalEmbeddingModel, "onnx/model_quantized.onnx"))
		assert.Equal(t, "model.onnx", OnnxFileFor("intfloat/multilingual-e5-small", "model.onnx"))
	})

	t.Run("Other models are left to hugot", func(t *testing.T) {
		assert.Equal(t, "", OnnxFileFor("intfloat/multilingual-e5-small", ""))
	})
}
