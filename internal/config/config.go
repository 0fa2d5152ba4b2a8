package config

const (
	// Report filenames and run timestamps are rendered in this zone.
	ReportTimeZone       = "America/New_York"
	ReportFilePrefix     = "Lowes_Merged_"
	ReportTimestamp      = "2006-01-02_1504"
	ReportSheetName      = "Orders"
	SpreadsheetMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DefaultGatewayPort   = 8081
	DefaultMaxUploadMB   = 32
	DefaultReportTTL     = "30m"
	DefaultSweepInterval = "1m"

	// Inbox sweep defaults
	DefaultInboxSchedule = "*/5 * * * *"
	DefaultInboxDir      = "./inbox"
	DefaultOutboxDir     = "./outbox"
)
