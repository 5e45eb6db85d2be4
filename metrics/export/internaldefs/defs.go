package internaldefs

import (
	shopadmin "github.com/miaodi2002/shopadmin"
)

// CounterDef maps one engine counter to its exported name.
type CounterDef struct {
	ID   shopadmin.MetricID
	Name string
	Help string
}

// HistogramDef maps one engine histogram to its exported name.
type HistogramDef struct {
	ID   shopadmin.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: shopadmin.MetricLoginSuccess, Name: "shopadmin_login_success_total", Help: "Successful admin logins."},
	{ID: shopadmin.MetricLoginFailure, Name: "shopadmin_login_failure_total", Help: "Failed admin login attempts."},
	{ID: shopadmin.MetricLogout, Name: "shopadmin_logout_total", Help: "Admin logout operations."},
	{ID: shopadmin.MetricSessionCreated, Name: "shopadmin_session_created_total", Help: "Created sessions."},
	{ID: shopadmin.MetricSessionValidated, Name: "shopadmin_session_validated_total", Help: "Successful session validations."},
	{ID: shopadmin.MetricSessionRejected, Name: "shopadmin_session_rejected_total", Help: "Rejected session validations."},
	{ID: shopadmin.MetricSessionRefreshed, Name: "shopadmin_session_refreshed_total", Help: "Session refresh operations."},
	{ID: shopadmin.MetricSessionDestroyed, Name: "shopadmin_session_destroyed_total", Help: "Destroyed sessions."},
	{ID: shopadmin.MetricSessionsSwept, Name: "shopadmin_sessions_swept_total", Help: "Expired sessions removed by sweeps."},
	{ID: shopadmin.MetricCredentialsEncrypted, Name: "shopadmin_credentials_encrypted_total", Help: "Credential bundles encrypted and stored."},
	{ID: shopadmin.MetricCredentialsDecrypted, Name: "shopadmin_credentials_decrypted_total", Help: "Credential bundles decrypted for viewing."},
	{ID: shopadmin.MetricCredentialsDeleted, Name: "shopadmin_credentials_deleted_total", Help: "Credential bundle delete operations."},
	{ID: shopadmin.MetricAccountCreated, Name: "shopadmin_account_created_total", Help: "Marketplace accounts created."},
	{ID: shopadmin.MetricAccountUpdated, Name: "shopadmin_account_updated_total", Help: "Marketplace account status updates."},
	{ID: shopadmin.MetricAccountDeleted, Name: "shopadmin_account_deleted_total", Help: "Marketplace accounts deleted."},
	{ID: shopadmin.MetricAuditEmitted, Name: "shopadmin_audit_emitted_total", Help: "Audit events enqueued for dispatch."},
}

var HistogramDefs = []HistogramDef{
	{ID: shopadmin.MetricValidateLatency, Name: "shopadmin_validate_latency_seconds", Help: "Session validation latency histogram."},
}

var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exporters expose.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
