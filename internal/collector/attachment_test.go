package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentConstructors(t *testing.T) {
	text := TextAttachment("log", "hi", "")
	assert.Equal(t, AttachmentMemory, text.Kind)
	assert.Equal(t, "text/plain", text.MediaType)

	js := JSONAttachment("body", map[string]int{"a": 1})
	assert.Equal(t, "application/json", js.MediaType)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(js.Data))

	fallback := JSONAttachment("body", func() {})
	assert.Equal(t, "body (fallback)", fallback.Name)
	assert.Equal(t, "text/plain", fallback.MediaType)

	file := FileAttachment("/tmp/out/report.csv", "", "")
	assert.Equal(t, AttachmentFile, file.Kind)
	assert.Equal(t, "report.csv", file.Name)
	assert.Equal(t, "text/csv", file.MediaType)

	png := ScreenshotAttachment("", []byte("\x89PNG\r\n"))
	assert.Equal(t, "Screenshot", png.Name)
	assert.Equal(t, "image/png", png.MediaType)
	jpg := ScreenshotAttachment("shot", []byte("\xff\xd8\xff\xe0"))
	assert.Equal(t, "image/jpeg", jpg.MediaType)

	link := LinkAttachment("https://ci/1?a=1&b=2", "")
	assert.Equal(t, "Link: https://ci/1?a=1&b=2", link.Name)
	assert.Equal(t, `<a href="https://ci/1?a=1&amp;b=2" target="_blank">https://ci/1?a=1&amp;b=2</a>`, string(link.Data))
}

func TestAttachmentValidate(t *testing.T) {
	assert.NoError(t, TextAttachment("a", "b", "").validate())
	assert.NoError(t, Attachment{Kind: AttachmentMemory, Name: "raw"}.validate())
	assert.Error(t, Attachment{Kind: AttachmentMemory, MediaType: "???"}.validate())
	assert.Error(t, Attachment{Kind: AttachmentFile, Name: "no path"}.validate())
	assert.Error(t, Attachment{Kind: "other"}.validate())
}
