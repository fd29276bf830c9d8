package errors

import "strings"

// UserMessage is the user-facing explanation of a Kind
type UserMessage struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Solution string `json:"solution"`
}

var messages = map[Kind]UserMessage{
	KindFileNotFound: {
		Title:    "File not found",
		Message:  "The specified file does not exist.\nCheck the file path.",
		Solution: "• Check the file has not been moved or deleted\n• Check the file path is correct",
	},
	KindFilePermissionDenied: {
		Title:    "File access error",
		Message:  "You do not have permission to access the file.",
		Solution: "• Check the read permission of the file\n• Try running with elevated privileges",
	},
	KindFileCorrupted: {
		Title:    "Corrupted file",
		Message:  "The file may be corrupted.",
		Solution: "• Try another file\n• Download the file again",
	},
	KindPDFDamaged: {
		Title:    "PDF read error",
		Message:  "The PDF is damaged or uses an unsupported format.",
		Solution: "• Check whether another PDF viewer can open it\n• Recreate or repair the PDF",
	},
	KindPDFPasswordProtected: {
		Title:    "Password-protected PDF",
		Message:  "This PDF is protected by a password.",
		Solution: "• Remove the password and try again",
	},
	KindOCRTesseractNotFound: {
		Title:    "OCR engine error",
		Message:  "The OCR engine (Tesseract) was not found.",
		Solution: "• Install Tesseract\n• Check that it is on the library path",
	},
	KindOCRLanguageDataMissing: {
		Title:    "OCR language data error",
		Message:  "OCR data for the selected language was not found.",
		Solution: "• Install the required traineddata files\n• Try another language setting",
	},
	KindMemory: {
		Title:    "Out of memory",
		Message:  "There is not enough memory to complete the operation.",
		Solution: "• Close other applications\n• Try a smaller file",
	},
	KindConfigFile: {
		Title:    "Configuration file error",
		Message:  "Failed to read the configuration file.",
		Solution: "• Delete the configuration file to restore defaults\n• Fix the configuration file by hand",
	},
	KindUnknown: {
		Title:    "Unexpected error",
		Message:  "An unexpected error occurred.",
		Solution: "• Restart the application\n• Check the log file if the problem persists",
	},
}

// Message returns the user-facing message for kind, falling back to the
// unknown-error message for kinds without a dedicated entry.
func Message(kind Kind) UserMessage {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindUnknown]
}

// Describe renders the full dialog text for kind with optional detail
func Describe(kind Kind, detail string) string {
	m := Message(kind)
	var b strings.Builder
	b.WriteString(m.Message)
	if detail != "" {
		b.WriteString("\n\nDetails: ")
		b.WriteString(detail)
	}
	b.WriteString("\n\nSolution:\n")
	b.WriteString(m.Solution)
	return b.String()
}
