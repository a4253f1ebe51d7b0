/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"sigs.k8s.io/release-utils/version"
)

// Sink is a destination reports are written to
type Sink interface {
	Write(context.Context, []byte) error
}

// NewSink returns the sink for a destination: "-" for stdout, a
// gs://bucket/path URI for Google Cloud Storage, and a file:// URI or
// plain path for a local file.
func NewSink(uri string) (Sink, error) {
	if uri == "" {
		return nil, errors.New("report destination not specified")
	}
	if uri == "-" {
		return &Writer{Out: os.Stdout}, nil
	}
	if !strings.Contains(uri, "://") {
		return &File{Path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing report URI %s: %w", uri, err)
	}
	switch u.Scheme {
	case "file":
		return &File{Path: u.Path}, nil
	case "gs":
		return NewGCS(uri)
	default:
		return nil, fmt.Errorf("%s is not a supported report destination", uri)
	}
}

// Write serializes the report and writes it to uri
func Write(ctx context.Context, r *Report, uri string) error {
	sink, err := NewSink(uri)
	if err != nil {
		return fmt.Errorf("getting report sink: %w", err)
	}
	data, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}
	if err := sink.Write(ctx, data); err != nil {
		return fmt.Errorf("writing report to %s: %w", uri, err)
	}
	return nil
}

// Writer sends reports to an io.Writer
type Writer struct {
	Out io.Writer
}

func (w *Writer) Write(_ context.Context, data []byte) error {
	_, err := w.Out.Write(data)
	return err
}

// File writes reports to a local file, creating its directory
type File struct {
	Path string
}

func (f *File) Write(_ context.Context, data []byte) error {
	if f.Path == "" {
		return errors.New("file sink has no path defined")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), os.FileMode(0o755)); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(f.Path, data, os.FileMode(0o644))
}

// GCS uploads reports to a bucket object
type GCS struct {
	Bucket string
	Object string

	options []option.ClientOption
}

func NewGCS(specURL string) (*GCS, error) {
	u, err := url.Parse(specURL)
	if err != nil {
		return nil, fmt.Errorf("parsing SpecURL %s: %w", specURL, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("gcs destination %s has no bucket", specURL)
	}
	object := strings.TrimPrefix(u.Path, "/")
	if object == "" || strings.HasSuffix(object, "/") {
		return nil, fmt.Errorf("gcs destination %s has no object name", specURL)
	}
	return &GCS{
		Bucket: u.Hostname(),
		Object: object,
		options: []option.ClientOption{
			option.WithUserAgent("tollgate/" + version.GetVersionInfo().GitVersion),
		},
	}, nil
}

func (g *GCS) Write(ctx context.Context, data []byte) error {
	client, err := storage.NewClient(ctx, g.options...)
	if err != nil {
		return fmt.Errorf("creating storage client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(g.Bucket).Object(g.Object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("uploading to gs://%s/%s: %w", g.Bucket, g.Object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing gs://%s/%s: %w", g.Bucket, g.Object, err)
	}
	return nil
}
