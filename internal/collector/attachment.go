package collector

import (
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"

	"allure-reporter/internal/allure"
)

// AttachmentKind tells where an attachment's payload lives.
type AttachmentKind string

const (
	// AttachmentMemory carries its payload in Data.
	AttachmentMemory AttachmentKind = "memory"
	// AttachmentFile points at a file on disk that is copied when flushed.
	AttachmentFile AttachmentKind = "file"
)

// Attachment is a piece of evidence attached to the current step or scenario.
type Attachment struct {
	Kind      AttachmentKind `json:"content"`
	Name      string         `json:"name"`
	MediaType string         `json:"media_type,omitempty"`
	// Data is the payload of a memory attachment (base64 on the wire).
	Data []byte `json:"data,omitempty"`
	// Text is a convenience for textual memory payloads; used when Data is empty.
	Text string `json:"text,omitempty"`
	// Path is the source file of a file attachment.
	Path string `json:"path,omitempty"`
}

// payload returns the bytes of a memory attachment.
func (a Attachment) payload() []byte {
	if len(a.Data) > 0 {
		return a.Data
	}
	return []byte(a.Text)
}

// TextAttachment attaches plain text. An empty mediaType means text/plain.
func TextAttachment(name, text, mediaType string) Attachment {
	if mediaType == "" {
		mediaType = "text/plain"
	}
	return Attachment{Kind: AttachmentMemory, Name: name, MediaType: mediaType, Data: []byte(text)}
}

// JSONAttachment attaches v rendered as indented JSON. Values that cannot be
// marshalled are attached as text named "<name> (fallback)".
func JSONAttachment(name string, v any) Attachment {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return TextAttachment(name+" (fallback)", fmt.Sprintf("%v", v), "text/plain")
	}
	return Attachment{Kind: AttachmentMemory, Name: name, MediaType: "application/json", Data: data}
}

// FileAttachment attaches the file at path. The name defaults to the file's
// base name and the media type is guessed from its extension when empty.
func FileAttachment(path, name, mediaType string) Attachment {
	if name == "" {
		name = filepath.Base(path)
	}
	if mediaType == "" {
		mediaType = allure.TypeForPath(path)
	}
	return Attachment{Kind: AttachmentFile, Name: name, MediaType: mediaType, Path: path}
}

// ScreenshotAttachment attaches PNG or JPEG bytes; the media type is sniffed.
func ScreenshotAttachment(name string, data []byte) Attachment {
	if name == "" {
		name = "Screenshot"
	}
	return Attachment{Kind: AttachmentMemory, Name: name, MediaType: allure.DetectImageType(data), Data: data}
}

// LinkAttachment attaches an HTML anchor to url, shown as "Link: <name>".
func LinkAttachment(url, name string) Attachment {
	if name == "" {
		name = url
	}
	anchor := fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(url), html.EscapeString(name))
	return TextAttachment("Link: "+name, anchor, "text/html")
}

// validate checks that the attachment can be flushed later.
func (a Attachment) validate() error {
	switch a.Kind {
	case AttachmentMemory:
		if a.MediaType != "" && !allure.ValidMediaType(a.MediaType) {
			return fmt.Errorf("unsupported media type %q", a.MediaType)
		}
	case AttachmentFile:
		if a.Path == "" {
			return fmt.Errorf("file attachment %q has no path", a.Name)
		}
		if a.MediaType != "" && !allure.ValidMediaType(a.MediaType) {
			return fmt.Errorf("unsupported media type %q", a.MediaType)
		}
	default:
		return fmt.Errorf("unknown attachment kind %q", a.Kind)
	}
	return nil
}

// flush writes the payload through w under a fresh source name and returns
// the reference to store on the owning step or result.
func (a Attachment) flush(w allure.ResultWriter, id string) (allure.Attachment, error) {
	var (
		source    string
		mediaType = a.MediaType
		err       error
	)
	switch a.Kind {
	case AttachmentMemory:
		if mediaType == "" {
			mediaType = allure.MediaTypeOctetStream
		}
		source = allure.AttachmentSource(id, allure.ExtensionForType(mediaType))
		err = w.WriteAttachment(source, a.payload())
	case AttachmentFile:
		if mediaType == "" {
			mediaType = allure.TypeForPath(a.Path)
		}
		source = allure.AttachmentSource(id, allure.ExtensionForPath(a.Path))
		err = w.CopyAttachment(source, a.Path)
	default:
		err = fmt.Errorf("unknown attachment kind %q", a.Kind)
	}
	if err != nil {
		return allure.Attachment{}, err
	}
	name := a.Name
	if name == "" {
		name = source
	}
	return allure.Attachment{Name: name, Source: source, Type: mediaType}, nil
}
