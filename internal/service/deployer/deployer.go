package deployer

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/wallpaper-deployer/internal/domain/asset"
	"github.com/oshokin/wallpaper-deployer/internal/logger"
)

const (
	// DefaultFileMode is applied to written assets; the helper and installer must be executable.
	DefaultFileMode os.FileMode = 0o755
	// DefaultDirMode is applied to created directories.
	DefaultDirMode os.FileMode = 0o755

	// go-update stages the payload and parks the previous target as hidden siblings of the target.
	newSidecarFormat = ".%s.new"
	oldSidecarFormat = ".%s.old"
)

// WriteError reports an asset that could not be created or fully written.
type WriteError struct {
	// Path is the destination that failed.
	Path string
	// Err is the underlying filesystem error.
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Deployer writes asset tables below a root directory.
type Deployer struct {
	fileMode os.FileMode
}

// New creates a Deployer.
func New() *Deployer {
	return &Deployer{
		fileMode: DefaultFileMode,
	}
}

// Deploy writes every asset of table below root, in table order, creating
// missing directories and overwriting existing files.
// On failure everything written so far is removed and a *WriteError is returned.
func (d *Deployer) Deploy(ctx context.Context, root string, table asset.Table) (*Deployment, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	deployment := &Deployment{
		Root: absRoot,
	}

	for i := range table {
		a := &table[i]

		if err = d.deployOne(ctx, deployment, a); err != nil {
			d.rollback(ctx, deployment)

			return nil, err
		}
	}

	logger.InfoKV(ctx, "Assets deployed",
		"root", absRoot,
		"files", len(deployment.Files),
		"bytes", table.Size())

	return deployment, nil
}

func (d *Deployer) deployOne(ctx context.Context, deployment *Deployment, a *asset.Asset) error {
	ctx = logger.WithKV(ctx, "asset", a.Name)
	destination := a.Destination(deployment.Root)

	if err := ctx.Err(); err != nil {
		return &WriteError{Path: destination, Err: err}
	}

	created, err := ensureDir(filepath.Dir(destination))
	deployment.Dirs = append(deployment.Dirs, created...)

	if err != nil {
		return &WriteError{Path: destination, Err: err}
	}

	// Recorded up front so a rollback also catches a partially written file.
	deployment.Files = append(deployment.Files, destination)

	if err = writeVerified(destination, a.Data, d.fileMode); err != nil {
		return &WriteError{Path: destination, Err: err}
	}

	logger.DebugKV(ctx, "Asset written", "path", destination, "bytes", len(a.Data))

	return nil
}

func (d *Deployer) rollback(ctx context.Context, deployment *Deployment) {
	if err := deployment.Cleanup(context.WithoutCancel(ctx)); err != nil {
		logger.ErrorKV(ctx, "Rollback of partial deployment failed", "error", err)
	}
}

// ensureDir creates dir and its missing parents, returning the created ones outermost first.
func ensureDir(dir string) ([]string, error) {
	var missing []string

	for current := dir; ; {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return nil, fmt.Errorf("%s: %w", current, errNotDirectory)
			}

			break
		}

		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		missing = append(missing, current)

		parent := filepath.Dir(current)
		if parent == current {
			break
		}

		current = parent
	}

	created := make([]string, 0, len(missing))

	for i := len(missing) - 1; i >= 0; i-- {
		err := os.Mkdir(missing[i], DefaultDirMode)

		switch {
		case err == nil:
			created = append(created, missing[i])
		case errors.Is(err, os.ErrExist):
			// Someone else made it in the meantime; it is not ours to remove.
		default:
			return created, fmt.Errorf("create directory: %w", err)
		}
	}

	return created, nil
}

var (
	errNotDirectory = errors.New("path exists and is not a directory")
	// errChecksumMismatch is returned when the file on disk differs from the payload.
	errChecksumMismatch = errors.New("written file does not match payload checksum")
)

// writeVerified replaces path with data using go-update, which swaps the file in
// with a rename, then reads the result back and compares its SHA-512 sum.
func writeVerified(path string, data []byte, mode os.FileMode) error {
	// go-update moves the current target aside first, so there must be one.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		placeholder, createErr := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY, mode)
		if createErr != nil {
			return createErr
		}

		if closeErr := placeholder.Close(); closeErr != nil {
			return closeErr
		}
	} else if err != nil {
		return err
	}

	checksum := sha512.Sum512(data)

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: mode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA512,
	}

	applyErr := goupdate.Apply(bytes.NewReader(data), options)

	// The staged and parked copies are never part of the deployment, whether Apply failed or not.
	removeSidecars(path)

	if applyErr != nil {
		if rollbackErr := goupdate.RollbackError(applyErr); rollbackErr != nil {
			return fmt.Errorf("%w (restoring previous file: %w)", applyErr, rollbackErr)
		}

		return applyErr
	}

	return verifyWritten(path, checksum[:])
}

// sidecarPaths returns the hidden staging and backup files go-update uses for path.
func sidecarPaths(path string) []string {
	dir, name := filepath.Dir(path), filepath.Base(path)

	return []string{
		filepath.Join(dir, fmt.Sprintf(newSidecarFormat, name)),
		filepath.Join(dir, fmt.Sprintf(oldSidecarFormat, name)),
	}
}

func removeSidecars(path string) {
	for _, sidecar := range sidecarPaths(path) {
		info, err := os.Lstat(sidecar)
		if err != nil || info.IsDir() {
			continue
		}

		_ = os.Remove(sidecar)
	}
}

// verifyWritten hashes the file at path and compares it with want.
func verifyWritten(path string, want []byte) error {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open for verification: %w", err)
	}
	defer file.Close()

	hash := sha512.New()
	if _, err = io.Copy(hash, file); err != nil {
		return fmt.Errorf("read for verification: %w", err)
	}

	if !bytes.Equal(hash.Sum(nil), want) {
		return errChecksumMismatch
	}

	return nil
}
