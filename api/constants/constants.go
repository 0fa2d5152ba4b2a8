package constants

// Common error messages
const (
	ErrMethodNotAllowed = "Method Not Allowed"
	ErrUploadTooLarge   = "The uploaded files exceed the size limit. Please check the file size and try again."
	ErrInvalidForm      = "Invalid multipart form. Please upload the files as form fields."
	ErrOrdersRequired   = "Please attach the Orders export in the 'orders' field."
	ErrInvalidRunID     = "run_id must be a UUID"
	ErrReportNotFound   = "Report not found or expired. Please run the merge again."
	ErrMergeFailed      = "The merge failed. Please try again."
	ErrRunsUnavailable  = "Unable to list recent runs"
	ErrRouteNotFound    = "404 - Route not found"
)

// Multipart form fields
const (
	FieldOrders    = "orders"
	FieldShipments = "shipments"
	FieldInvoices  = "invoices"
	FieldRunID     = "run_id"
)

// Headers
const (
	ContentTypeJSON       = "application/json"
	ContentTypeText       = "Content-Type"
	HeaderRunID           = "X-Run-ID"
	HeaderContentDisp     = "Content-Disposition"
	HeaderExposeHeaders   = "Access-Control-Expose-Headers"
	HeaderAllowOrigin     = "Access-Control-Allow-Origin"
	FormatAttachment      = "attachment; filename=%q"
	DefaultRecentRunLimit = 50
)
