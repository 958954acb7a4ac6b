/*
Copyright © 2019 the news2roms authors.
This file is part of news2roms.

news2roms is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

news2roms is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with news2roms.  If not, see <http://www.gnu.org/licenses/>.
*/

package news2romsutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// newBackOff returns the retry policy for HTTP downloads.
var newBackOff = func() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob.
// If it is, it downloads the file and
// returns the path to the downloaded file.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, log)
	}

	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}

	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file. Failed requests and server errors
// are retried.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return path, fmt.Errorf("news2romsutil: parsing download url: %v", err)
	}
	dir, err := ioutil.TempDir("", "news2roms")
	if err != nil {
		return path, fmt.Errorf("news2romsutil: creating temporary download directory: %v", err)
	}
	fname := filepath.Join(dir, filepath.Base(u.Path))
	w, err := os.Create(fname)
	if err != nil {
		return path, fmt.Errorf("news2romsutil: creating file for download: %v", err)
	}
	defer w.Close()

	get := func() error {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := http.DefaultClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("downloading %s: %s", path, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("downloading %s: %s", path, resp.Status))
		}
		if err := w.Truncate(0); err != nil {
			return backoff.Permanent(err)
		}
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}
		_, err = io.Copy(w, resp.Body)
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.WithFields(logrus.Fields{
			"url":   path,
			"retry": wait,
		}).Warn(err)
	}
	if err := backoff.RetryNotify(get, backoff.WithContext(newBackOff(), ctx), notify); err != nil {
		return path, fmt.Errorf("news2romsutil: %v", err)
	}
	log.WithFields(logrus.Fields{"url": path, "file": fname}).Info("downloaded input")
	return fname, nil
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	url, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("news2romsutil.OpenBucket: %v", err)
	}
	switch url.Scheme {
	case "file":
		return fileblob.NewBucket(url.Hostname())
	case "gs":
		return gsBucket(ctx, url.Hostname())
	case "s3":
		return s3Bucket(ctx, url.Hostname())
	default:
		return nil, fmt.Errorf("news2romsutil.OpenBucket: invalid provider %s", url.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	url, err := url.Parse(path)
	if err != nil {
		return path, fmt.Errorf("news2romsutil: parsing blob path: %v", err)
	}
	bucket, err := OpenBucket(ctx, url.Scheme+"://"+url.Host)
	if err != nil {
		return path, err
	}
	dir, err := ioutil.TempDir("", "news2roms")
	if err != nil {
		return path, fmt.Errorf("news2romsutil: creating temporary download directory: %v", err)
	}
	fname := filepath.Join(dir, filepath.Base(url.Path))
	w, err := os.Create(fname)
	if err != nil {
		return path, fmt.Errorf("news2romsutil: creating file for download: %v", err)
	}
	defer w.Close()
	r, err := bucket.NewReader(ctx, strings.TrimPrefix(url.Path, "/"))
	if err != nil {
		return path, fmt.Errorf("news2romsutil: opening blob %s: %v", path, err)
	}
	defer r.Close()
	if _, err = io.Copy(w, r); err != nil {
		return path, fmt.Errorf("news2romsutil: downloading blob %s: %v", path, err)
	}
	log.WithFields(logrus.Fields{"blob": path, "file": fname}).Info("downloaded input")
	return fname, nil
}
