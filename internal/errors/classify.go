package errors

import (
	stderrors "errors"
	"io/fs"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

// ClassifyFile maps a filesystem error to a Kind
func ClassifyFile(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return KindFileNotFound
	case stderrors.Is(err, fs.ErrPermission):
		return KindFilePermissionDenied
	case stderrors.Is(err, syscall.EISDIR):
		return KindFileUnsupportedFormat
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "is a directory") {
		return KindFileUnsupportedFormat
	}
	if strings.Contains(msg, "corrupt") || strings.Contains(msg, "damaged") {
		return KindFileCorrupted
	}
	return KindUnknown
}

// ClassifyPDF maps a PDF library error to a Kind
func ClassifyPDF(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password") || strings.Contains(msg, "encrypted"):
		return KindPDFPasswordProtected
	case strings.Contains(msg, "corrupt") || strings.Contains(msg, "damaged") || strings.Contains(msg, "invalid"):
		return KindPDFDamaged
	default:
		return KindPDFHandlerError
	}
}

// ClassifyOCR maps an OCR engine error to a Kind
func ClassifyOCR(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "tesseract") && strings.Contains(msg, "not found"):
		return KindOCRTesseractNotFound
	case strings.Contains(msg, "language") || strings.Contains(msg, "traineddata"):
		return KindOCRLanguageDataMissing
	case strings.Contains(msg, "memory") || strings.Contains(msg, "image too large"):
		return KindOCRImageTooLarge
	default:
		return KindOCRProcessingFailed
	}
}

// KindOf extracts the Kind from err, or KindUnknown when err carries none
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Handle logs err under the given kind with optional detail
func Handle(logger logrus.FieldLogger, err error, kind Kind, detail string) {
	if logger == nil || err == nil {
		return
	}
	entry := logger.WithFields(logrus.Fields{
		"kind":     kind.Value(),
		"severity": int(kind.GetSeverity()),
	}).WithError(err)
	if detail != "" {
		entry = entry.WithField("detail", detail)
	}
	entry.Error(Message(kind).Title)
}
