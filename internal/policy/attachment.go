// Package policy holds the pure validation cores that gate complaint
// attachments and account passwords. Nothing here performs I/O; callers own
// logging and presentation of the accumulated messages.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hostelguard/hostelctl/internal/models"
)

// File is a candidate attachment during submission. Bytes is the transient
// in-memory handle; it is only ever populated between selection and upload
// and never persisted.
type File struct {
	Name         string
	Size         int64
	MimeType     string
	LastModified time.Time
	Bytes        []byte
}

// Descriptor converts an accepted file into its metadata-only form for the
// submission payload.
func (f File) Descriptor() models.Attachment {
	return models.Attachment{
		FileName:  f.Name,
		SizeBytes: f.Size,
		MimeType:  f.MimeType,
	}
}

// AttachmentRules is the declarative acceptance rule set. The zero value is
// unusable; construct with DefaultAttachmentRules.
type AttachmentRules struct {
	MaxFiles      int
	MaxFileBytes  int64
	MaxTotalBytes int64
}

// DefaultAttachmentRules returns the platform's acceptance policy: at most
// five files, 5 MiB each, 20 MiB in total.
func DefaultAttachmentRules() AttachmentRules {
	return AttachmentRules{
		MaxFiles:      5,
		MaxFileBytes:  5 * 1024 * 1024,
		MaxTotalBytes: 20 * 1024 * 1024,
	}
}

var allowedExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "ppt": true, "pptx": true,
	"xls": true, "xlsx": true, "txt": true, "rtf": true,
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
	"webp": true, "heic": true, "heif": true,
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
	"webp": true, "heic": true, "heif": true,
}

// deniedExtensions are rejected wherever they appear in the filename,
// including as a non-final segment (report.exe.pdf).
var deniedExtensions = map[string]bool{
	"exe": true, "msi": true, "bat": true, "cmd": true, "com": true,
	"scr": true, "sh": true, "bash": true, "zsh": true, "ksh": true,
	"csh": true, "ps1": true, "psm1": true, "jar": true, "js": true,
	"mjs": true, "cpl": true, "vbs": true, "hta": true, "dll": true,
	"so": true, "apk": true, "ipa": true, "pkg": true, "dmg": true,
	"app": true, "iso": true, "img": true,
}

var deniedMimePrefixes = []string{
	"application/x-ms",
	"application/x-dosexec",
	"application/x-executable",
	"application/java-archive",
	"text/javascript",
	"application/javascript",
	"application/x-sh",
	"application/x-bat",
	"application/vnd.android.package-archive",
	"application/x-ms-installer",
	"application/x-apple-diskimage",
}

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain":      true,
	"application/rtf": true,
	"text/rtf":        true,
}

// EvaluateAttachments applies the rule set to a batch of candidates on top
// of the already accepted list. It returns the next accepted list and the
// accumulated, deduplicated error messages. Acceptance is all-or-nothing
// per candidate; a bad batch never disturbs prior acceptances.
func (r AttachmentRules) EvaluateAttachments(accepted []File, batch []File) ([]File, []string) {
	next := make([]File, len(accepted))
	copy(next, accepted)

	var total int64
	for _, f := range next {
		total += f.Size
	}

	var errs []string
	seen := map[string]bool{}
	addErr := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			errs = append(errs, msg)
		}
	}

	for _, candidate := range batch {
		if isDuplicate(next, candidate) {
			continue
		}
		if msg := r.check(candidate, len(next), total); msg != "" {
			addErr(msg)
			continue
		}
		next = append(next, candidate)
		total += candidate.Size
	}

	return next, errs
}

func (r AttachmentRules) check(f File, count int, total int64) string {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return "files must have a name"
	}
	if f.Size <= 0 {
		return fmt.Sprintf("%s is empty or could not be read", name)
	}
	if hasDeniedSegment(name) || !hasAllowedExtension(name) {
		return fmt.Sprintf("%s is not an accepted file type", name)
	}
	if deniedMime(f.MimeType) || deniedMime(sniffMime(f)) {
		return fmt.Sprintf("%s is not an accepted file type", name)
	}
	if !allowedMime(f.MimeType, name) {
		return fmt.Sprintf("%s is not an accepted file type", name)
	}
	if f.Size > r.MaxFileBytes {
		return fmt.Sprintf("%s exceeds the %s per-file limit", name, models.FormatFileSize(r.MaxFileBytes))
	}
	if count >= r.MaxFiles {
		return fmt.Sprintf("You can attach up to %d files per complaint", r.MaxFiles)
	}
	if total+f.Size > r.MaxTotalBytes {
		return fmt.Sprintf("Attachments may not exceed %s in total", models.FormatFileSize(r.MaxTotalBytes))
	}
	return ""
}

// isDuplicate matches on (name, size, last-modified); duplicates are
// silently skipped rather than reported.
func isDuplicate(accepted []File, f File) bool {
	for _, a := range accepted {
		if a.Name == f.Name && a.Size == f.Size && a.LastModified.Equal(f.LastModified) {
			return true
		}
	}
	return false
}

func extension(segment string) string {
	return strings.ToLower(strings.TrimSpace(segment))
}

func hasDeniedSegment(name string) bool {
	segments := strings.Split(name, ".")
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments[1:] {
		if deniedExtensions[extension(seg)] {
			return true
		}
	}
	return false
}

func hasAllowedExtension(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return false
	}
	return allowedExtensions[extension(name[idx+1:])]
}

func isImageExtension(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	return imageExtensions[extension(name[idx+1:])]
}

func deniedMime(mime string) bool {
	m := strings.ToLower(strings.TrimSpace(mime))
	if m == "" {
		return false
	}
	for _, prefix := range deniedMimePrefixes {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// allowedMime accepts the declared type when it is on the allow list, or any
// image type when the extension is in the image subset. Browsers leave the
// declared type empty for less common formats, so an empty type defers to
// the extension checks.
func allowedMime(mime, name string) bool {
	m := strings.ToLower(strings.TrimSpace(mime))
	if m == "" {
		return true
	}
	if strings.HasPrefix(m, "image/") {
		return isImageExtension(name)
	}
	return allowedMimeTypes[m]
}

// sniffMime detects the content type from the transient byte handle when one
// is present. Declared types come from the picker and are spoofable; the
// sniffed type catches executables renamed to a friendly extension.
func sniffMime(f File) string {
	if len(f.Bytes) == 0 {
		return ""
	}
	return mimetype.Detect(f.Bytes).String()
}
