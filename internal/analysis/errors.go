package analysis

import "fmt"

// ErrorKind is the closed taxonomy of analysis failures. The UI branches on
// the kind only, never on error internals.
type ErrorKind string

const (
	// MissingCredential means no API key is configured; no request was sent.
	MissingCredential ErrorKind = "missing_credential"
	// AccessOrQuota is a 403/429-equivalent from the service (billing or rate limit).
	AccessOrQuota ErrorKind = "access_or_quota"
	// AnalysisFailed covers empty and malformed responses and transport errors.
	AnalysisFailed ErrorKind = "analysis_failed"
)

// AnalysisError classifies a failed analysis. Every failure still comes with
// a well-formed fallback ScanResult, so this error exists for logging and
// remediation hints, not for control flow in the rendering path.
type AnalysisError struct {
	Kind ErrorKind
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
