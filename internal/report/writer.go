package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/platform/s3"
)

const contentType = "application/yaml"

// Writer persists a report.
type Writer interface {
	Write(ctx context.Context, r *Report) error
	// Target describes the destination for logs.
	Target() string
}

// ObjectPutter is the part of the object storage client the S3 writer needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// NewWriter picks the writer for target: s3://bucket/key goes to object
// storage configured from FITTINGS_S3_*, anything else is a file path.
// An empty target means DefaultReapFile.
func NewWriter(ctx context.Context, target string) (Writer, error) {
	if !strings.HasPrefix(target, s3.Scheme) {
		return NewFileWriter(target), nil
	}

	bucket, key, err := s3.ParseURI(target)
	if err != nil {
		return nil, config.ConfigurationError.Wrap(err, "invalid reap target")
	}
	client, err := s3.NewClient(ctx, s3.OptionsFromEnv())
	if err != nil {
		return nil, config.ConfigurationError.Wrap(err, "failed to configure object storage")
	}
	return &S3Writer{Bucket: bucket, Key: key, Client: client}, nil
}

// FileWriter writes the report to a local file, replacing it atomically.
type FileWriter struct {
	Path string
}

// NewFileWriter returns a FileWriter for path, or for DefaultReapFile when
// path is empty.
func NewFileWriter(path string) *FileWriter {
	if path == "" {
		path = config.DefaultReapFile
	}
	return &FileWriter{Path: path}
}

// Target implements Writer.
func (w *FileWriter) Target() string { return w.Path }

// Write implements Writer. The previous file is replaced only once the new
// content is fully on disk.
func (w *FileWriter) Write(_ context.Context, r *Report) error {
	data, err := r.Marshal()
	if err != nil {
		return config.ReportIOError.Wrap(err, "failed to serialize report")
	}

	dir := filepath.Dir(w.Path)
	tmp, err := os.CreateTemp(dir, ".spit-*.yaml")
	if err != nil {
		return config.ReportIOError.Wrap(err, "failed to create report in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return config.ReportIOError.Wrap(err, "failed to write report %s", w.Path)
	}
	if err := tmp.Close(); err != nil {
		return config.ReportIOError.Wrap(err, "failed to write report %s", w.Path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return config.ReportIOError.Wrap(err, "failed to write report %s", w.Path)
	}
	if err := os.Rename(tmpName, w.Path); err != nil {
		return config.ReportIOError.Wrap(err, "failed to replace report %s", w.Path)
	}
	return nil
}

// S3Writer stores the report as an object.
type S3Writer struct {
	Bucket string
	Key    string
	Client ObjectPutter
}

// Target implements Writer.
func (w *S3Writer) Target() string { return s3.Scheme + w.Bucket + "/" + w.Key }

// Write implements Writer.
func (w *S3Writer) Write(ctx context.Context, r *Report) error {
	data, err := r.Marshal()
	if err != nil {
		return config.ReportIOError.Wrap(err, "failed to serialize report")
	}
	if err := w.Client.PutObject(ctx, w.Bucket, w.Key, data, contentType); err != nil {
		return config.ReportIOError.Wrap(err, "failed to upload report to %s", w.Target())
	}
	return nil
}
