package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/mahin-dev/catalog-console/internal/models"
)

// EncodeSubmission renders a submission as multipart/form-data: scalar and
// serialized-list fields first, then the retained image references as a JSON
// array under "images", then one file part per new attachment under
// "images[]".
func EncodeSubmission(sub *models.Submission) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range sub.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("gateway: writing field %s: %w", f.Name, err)
		}
	}

	retained := sub.Images
	if retained == nil {
		retained = []string{}
	}
	refs, err := json.Marshal(retained)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("images", string(refs)); err != nil {
		return nil, "", err
	}

	for _, a := range sub.Attachments {
		part, err := attachmentPart(w, a)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, "", fmt.Errorf("gateway: writing attachment %s: %w", a.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func attachmentPart(w *multipart.Writer, a models.Attachment) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="images[]"; filename="%s"`, escapeQuotes(a.Filename)))
	if a.ContentType != "" {
		h.Set("Content-Type", a.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	return w.CreatePart(h)
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
