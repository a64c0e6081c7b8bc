package pdfutil

import (
	"bytes"
	"regexp"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise writes a config directory under the user's home on first use.
	api.DisableConfigDir()
}

var headerPattern = regexp.MustCompile(`%PDF-(\d\.\d)`)

// headerVersion returns the PDF version declared by the document, e.g. "1.7".
// pdfcpu is asked first; the raw header is scanned when pdfcpu rejects the file.
func headerVersion(data []byte) string {
	if v := pdfcpuVersion(data); v != "" {
		return v
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if m := headerPattern.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	return ""
}

func pdfcpuVersion(data []byte) (version string) {
	defer func() {
		if recover() != nil {
			version = ""
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil || ctx == nil || ctx.HeaderVersion == nil {
		return ""
	}
	return ctx.HeaderVersion.String()
}
