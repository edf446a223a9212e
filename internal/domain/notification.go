package domain

import (
	"strings"
	"time"
)

// AudienceType selects a configured recipient list
type AudienceType int

const (
	AudienceStandard AudienceType = 1
	AudienceError    AudienceType = 2
)

func (a AudienceType) String() string {
	if a == AudienceError {
		return "error"
	}
	return "standard"
}

// NotificationKind selects subject and body of an outgoing mail
type NotificationKind string

const (
	NotificationSuccess              NotificationKind = "success"
	NotificationSuccessNoDelinquency NotificationKind = "success-no-delinquency"
	NotificationError                NotificationKind = "error"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Attachment is a named binary file carried by a notification
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportBundle is the ordered set of attachments built for one notification
type ReportBundle []Attachment

// TotalSize returns the combined content length.
func (b ReportBundle) TotalSize() int {
	n := 0
	for _, a := range b {
		n += len(a.Content)
	}
	return n
}

// ExceptionInfo describes an unhandled cycle failure for the error notification
type ExceptionInfo struct {
	Timestamp time.Time `json:"timestamp"`
	System    string    `json:"system"`
	User      string    `json:"user"`
	Function  string    `json:"function"`
	Message   string    `json:"message"`
	Trace     string    `json:"trace"`
	Extra     string    `json:"extra"`
}

// NotificationRequest is a single outgoing notification
type NotificationRequest struct {
	Recipients  []string
	Attachments ReportBundle
	Kind        NotificationKind
	Error       *ExceptionInfo
}

// NormalizeRecipients trims, drops blanks and removes case-insensitive
// duplicates while keeping first-seen order.
func NormalizeRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		key := strings.ToLower(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
