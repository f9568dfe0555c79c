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
	"runtime"
	"strings"
)

// RuntimeVersion is the ONNX runtime release paired with the
// onnxruntime_go binding in go.mod. Bump both together.
const RuntimeVersion = "1.17.1"

// runtimePathEnv names the env var fastembed and the encoder both honor
// for the shared library location.
const runtimePathEnv = "ONNX_PATH"

const runtimeReleaseURL = "https://github.com/microsoft/onnxruntime/releases/download/v%s/onnxruntime-%s-%s.tgz"

// platformArchives maps GOOS/GOARCH to ONNX release archive names.
var platformArchives = map[string]map[string]string{
	"linux": {
		"amd64": "linux-x64",
		"arm64": "linux-aarch64",
	},
	"darwin": {
		"amd64": "osx-x86_64",
		"arm64": "osx-arm64",
	},
}

var libraryNames = map[string]string{
	"linux":  "libonnxruntime.so",
	"darwin": "libonnxruntime.dylib",
}

func platformArchive(goos, goarch string) (string, error) {
	archMap, ok := platformArchives[goos]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	arch, ok := archMap[goarch]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return arch, nil
}

func libraryName(goos string) string {
	if name, ok := libraryNames[goos]; ok {
		return name
	}
	return "libonnxruntime.so"
}

func runtimeInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "tokenpress", "lib")
}

// LibraryPath resolves the ONNX runtime shared library. It checks the
// ONNX_PATH env var first, then the managed install directory, and returns
// empty when neither exists.
func LibraryPath() string {
	if envPath := os.Getenv(runtimePathEnv); envPath != "" {
		return envPath
	}
	managed := filepath.Join(runtimeInstallDir(), libraryName(runtime.GOOS))
	if _, err := os.Stat(managed); err == nil {
		return managed
	}
	return ""
}

// RuntimeInstalled reports whether an ONNX runtime library is resolvable.
func RuntimeInstalled() bool {
	return LibraryPath() != ""
}

// DownloadRuntime fetches the ONNX runtime release for the current
// platform into the managed install directory. An empty version uses
// RuntimeVersion.
func DownloadRuntime(ctx context.Context, version string) error {
	if version == "" {
		version = RuntimeVersion
	}
	platform, err := platformArchive(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	destDir := runtimeInstallDir()
	if err := os.MkdirAll(destDir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	url := fmt.Sprintf(runtimeReleaseURL, version, platform, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading onnxruntime: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading onnxruntime: status %d for %s", resp.StatusCode, url)
	}

	if err := extractRuntimeLibs(resp.Body, destDir, version, platform); err != nil {
		return fmt.Errorf("extracting archive: %w", err)
	}
	return nil
}

// EnsureRuntime returns the shared library path, downloading the release
// first when nothing is installed. It exports the resolved path through
// ONNX_PATH so embedding providers load the same library.
func EnsureRuntime(ctx context.Context) (string, error) {
	path := LibraryPath()
	if path == "" {
		if err := DownloadRuntime(ctx, ""); err != nil {
			return "", fmt.Errorf("onnxruntime v%s not found and download failed: %w", RuntimeVersion, err)
		}
		path = LibraryPath()
		if path == "" {
			return "", fmt.Errorf("onnxruntime download finished but %s is missing", libraryName(runtime.GOOS))
		}
	}
	if os.Getenv(runtimePathEnv) == "" {
		if err := os.Setenv(runtimePathEnv, path); err != nil {
			return "", fmt.Errorf("setting %s: %w", runtimePathEnv, err)
		}
	}
	return path, nil
}

// extractRuntimeLibs unpacks every file under the archive's lib/ directory
// into destDir, preserving symlinks where the filesystem allows them.
func extractRuntimeLibs(r io.Reader, destDir, version, platform string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	prefix := fmt.Sprintf("onnxruntime-%s-%s/lib/", platform, version)
	mainLib := libraryName(runtime.GOOS)
	foundMainLib := false

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}

		name := strings.TrimPrefix(header.Name, "./")
		if !strings.HasPrefix(name, prefix) || header.Typeflag == tar.TypeDir {
			continue
		}

		filename := filepath.Base(name)
		destPath := filepath.Join(destDir, filename)

		if header.Typeflag == tar.TypeSymlink {
			os.Remove(destPath)
			if err := os.Symlink(header.Linkname, destPath); err != nil {
				// The link target is extracted as a regular file too.
				continue
			}
			if filename == mainLib {
				foundMainLib = true
			}
			continue
		}

		out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating %s: %w", filename, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("writing %s: %w", filename, err)
		}
		out.Close()

		if filename == mainLib || strings.HasPrefix(filename, mainLib+".") {
			foundMainLib = true
		}
	}

	if !foundMainLib {
		return fmt.Errorf("%s not found in archive", mainLib)
	}
	return nil
}
