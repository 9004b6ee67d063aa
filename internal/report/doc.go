// Package report collects the changes applied during a run and writes them
// out as the spit report.
//
// The report is a YAML mapping from node name to the ordered list of
// settings that were actually changed on it:
//
//	web-1:
//	  - cpu: 4
//	  - memory: 8
//	  - disk: 100 ECONOMIC
//	  - monitoring: ESSENTIALS
//
// Nodes appear in the order they were first added. The destination is a
// local file (default spit.yaml) or an s3://bucket/key object.
package report
