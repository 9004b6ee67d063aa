// Package config handles the fittings plan: loading it from YAML, validating
// per-node settings, and the environment-driven timeouts used by the
// polishing engine.
//
// # Plan Layout
//
//	reap: spit.yaml
//	facilities:
//	  - name: eu-central
//	    location: nbg1
//	    nodes:
//	      - name: web-1
//	        cpu: 4
//	        memory: 8
//	        disks: ["100 economic", "50"]
//	        monitoring: essentials
//	        glue: backend-net
//
// Node settings are captured as raw strings and validated once by
// ValidateSettings. Out-of-range or malformed values are logged and
// dropped; they never fail the plan as a whole.
//
// # Errors
//
// errors.go defines the errorx types used across the module:
// ValidationError, TransientProviderError (carries the Temporary trait),
// PermanentProviderError, ReportIOError and ConfigurationError.
package config
