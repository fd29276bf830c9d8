package errors

import (
	"fmt"
	"strings"
	"time"
)

// Error is an application error carrying a user-facing classification
type Error struct {
	Kind        Kind      `json:"kind"`
	Op          string    `json:"op,omitempty"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Err         error     `json:"-"`
}

// Kind represents the category of an application error
type Kind int

const (
	KindUnknown Kind = iota
	KindFileNotFound
	KindFilePermissionDenied
	KindFileCorrupted
	KindFileUnsupportedFormat
	KindPDFDamaged
	KindPDFPasswordProtected
	KindPDFHandlerError
	KindOCRTesseractNotFound
	KindOCRLanguageDataMissing
	KindOCRProcessingFailed
	KindOCRImageTooLarge
	KindMemory
	KindDiskSpace
	KindNetwork
	KindConfigFile
	KindConfigInvalidValue
	KindOperationCancelled
)

// Severity indicates how critical an error is
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityFatal
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind.String(), msg, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Kind.String(), msg)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// String returns the upper-case identifier of the kind
func (k Kind) String() string {
	switch k {
	case KindFileNotFound:
		return "FILE_NOT_FOUND"
	case KindFilePermissionDenied:
		return "FILE_PERMISSION_DENIED"
	case KindFileCorrupted:
		return "FILE_CORRUPTED"
	case KindFileUnsupportedFormat:
		return "FILE_UNSUPPORTED_FORMAT"
	case KindPDFDamaged:
		return "PDF_DAMAGED"
	case KindPDFPasswordProtected:
		return "PDF_PASSWORD_PROTECTED"
	case KindPDFHandlerError:
		return "PDF_HANDLER_ERROR"
	case KindOCRTesseractNotFound:
		return "OCR_TESSERACT_NOT_FOUND"
	case KindOCRLanguageDataMissing:
		return "OCR_LANGUAGE_DATA_MISSING"
	case KindOCRProcessingFailed:
		return "OCR_PROCESSING_FAILED"
	case KindOCRImageTooLarge:
		return "OCR_IMAGE_TOO_LARGE"
	case KindMemory:
		return "MEMORY_ERROR"
	case KindDiskSpace:
		return "DISK_SPACE_ERROR"
	case KindNetwork:
		return "NETWORK_ERROR"
	case KindConfigFile:
		return "CONFIG_FILE_ERROR"
	case KindConfigInvalidValue:
		return "CONFIG_INVALID_VALUE"
	case KindOperationCancelled:
		return "OPERATION_CANCELLED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Value returns the lower-case identifier used in logs
func (k Kind) Value() string {
	return strings.ToLower(k.String())
}

// GetSeverity returns the severity level for a given kind
func (k Kind) GetSeverity() Severity {
	switch k {
	case KindMemory, KindDiskSpace:
		return SeverityFatal
	case KindFileCorrupted, KindPDFDamaged, KindOCRTesseractNotFound:
		return SeverityCritical
	case KindFileNotFound, KindFilePermissionDenied, KindFileUnsupportedFormat,
		KindPDFPasswordProtected, KindPDFHandlerError, KindConfigFile:
		return SeverityError
	case KindOCRLanguageDataMissing, KindOCRProcessingFailed, KindOCRImageTooLarge,
		KindConfigInvalidValue, KindNetwork:
		return SeverityWarning
	case KindOperationCancelled:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// IsRecoverable determines if the application can continue after this kind
func (k Kind) IsRecoverable() bool {
	switch k {
	case KindMemory, KindDiskSpace, KindOCRTesseractNotFound:
		return false
	case KindUnknown:
		return false
	default:
		return true
	}
}

// New creates a new Error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		Recoverable: kind.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// Wrap wraps err as an Error of the given kind. A nil err returns nil.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:        kind,
		Op:          op,
		Message:     err.Error(),
		Recoverable: kind.IsRecoverable(),
		Timestamp:   time.Now(),
		Err:         err,
	}
}

// Sentinel returns a matcher usable with errors.Is for a kind
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// WithContext adds context to an existing Error
func (e *Error) WithContext(context string) *Error {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing Error
func (e *Error) WithFile(filePath string) *Error {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing Error
func (e *Error) WithPage(pageNumber int) *Error {
	e.PageNumber = pageNumber
	return e
}

// GetSeverity returns the severity of this specific error
func (e *Error) GetSeverity() Severity {
	return e.Kind.GetSeverity()
}

// IsCritical returns true if this error is critical or fatal
func (e *Error) IsCritical() bool {
	severity := e.GetSeverity()
	return severity == SeverityCritical || severity == SeverityFatal
}

// Collection gathers non-fatal errors from batch operations
type Collection struct {
	Errors   []*Error `json:"errors"`
	Warnings []*Error `json:"warnings"`
	Scope    string   `json:"scope,omitempty"`
}

// NewCollection creates a new error collection
func NewCollection(scope string) *Collection {
	return &Collection{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
		Scope:    scope,
	}
}

// Add adds an error to the appropriate list based on severity
func (c *Collection) Add(err *Error) {
	if err == nil {
		return
	}
	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		c.Warnings = append(c.Warnings, err)
	} else {
		c.Errors = append(c.Errors, err)
	}
}

// HasCriticalErrors returns true if any critical errors exist
func (c *Collection) HasCriticalErrors() bool {
	for _, err := range c.Errors {
		if err.IsCritical() {
			return true
		}
	}
	return false
}

// Count returns the number of errors and warnings
func (c *Collection) Count() (errors, warnings int) {
	return len(c.Errors), len(c.Warnings)
}

// Empty reports whether nothing was collected
func (c *Collection) Empty() bool {
	return len(c.Errors) == 0 && len(c.Warnings) == 0
}

// Summary returns a text summary of all errors and warnings
func (c *Collection) Summary() string {
	errorCount, warningCount := c.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}

	summary := fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)

	if c.HasCriticalErrors() {
		summary += " (including critical errors)"
	}

	return summary
}
