package encoder

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Encoder bundles are pre-exported ONNX graphs published on the project
// release page. Stock HuggingFace exports omit the per-layer attention
// outputs the scorer needs, so the bundles are exported with attentions
// enabled and repacked as tarballs of model.onnx and tokenizer.json.
const (
	modelReleaseTag = "models-v1"
	modelReleaseURL = "https://github.com/fyrsmithlabs/tokenpress/releases/download/%s/%s.tar.gz"
)

// DefaultModelName is the encoder bundle fetched when no name is given.
const DefaultModelName = "distilbert-base-uncased"

// modelFiles are the artifacts every encoder bundle must provide.
var modelFiles = []string{"model.onnx", "tokenizer.json"}

// ModelInstalled reports whether dir holds a complete encoder bundle.
func ModelInstalled(dir string) bool {
	for _, name := range modelFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// DownloadModel fetches the named encoder bundle into destDir. An empty
// name uses DefaultModelName, an empty destDir the managed model
// directory for that name.
func DownloadModel(ctx context.Context, name, destDir string) error {
	if name == "" {
		name = DefaultModelName
	}
	if destDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		destDir = filepath.Join(home, ".config", "tokenpress", "models", name)
	}
	if err := os.MkdirAll(destDir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	url := fmt.Sprintf(modelReleaseURL, modelReleaseTag, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading model %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading model %s: status %d for %s", name, resp.StatusCode, url)
	}

	if err := extractModelFiles(resp.Body, destDir); err != nil {
		return fmt.Errorf("extracting model %s: %w", name, err)
	}
	return nil
}

// extractModelFiles unpacks a model bundle into destDir, flattening any
// directory prefix, and checks every required artifact arrived.
func extractModelFiles(r io.Reader, destDir string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	found := make(map[string]bool, len(modelFiles))

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		filename := filepath.Base(header.Name)
		destPath := filepath.Join(destDir, filename)

		out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating %s: %w", filename, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("writing %s: %w", filename, err)
		}
		out.Close()
		found[filename] = true
	}

	for _, name := range modelFiles {
		if !found[name] {
			return fmt.Errorf("%s not found in bundle", name)
		}
	}
	return nil
}
