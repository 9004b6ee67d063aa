// Package s3 uploads fittings reports to S3-compatible object storage.
//
// Reports are addressed as s3://bucket/key. The endpoint may point at AWS or
// any S3-compatible service; Hetzner Object Storage and MinIO are the usual
// targets. Credentials are taken from the FITTINGS_S3_* environment when set,
// otherwise from the default AWS credential chain.
package s3
