package dashboard

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

//go:embed templates/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// Logo is an image inlined into the page as a data URI.
type Logo struct {
	Src template.URL
	Alt string
}

// LoadLogos reads each image file and encodes it as a base64 data URI.
func LoadLogos(paths []string) ([]Logo, error) {
	logos := make([]Logo, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "dashboard: read logo %s", p)
		}
		mime := http.DetectContentType(data)
		if strings.EqualFold(filepath.Ext(p), ".svg") {
			// Content sniffing reports SVG as XML.
			mime = "image/svg+xml"
		}
		if !strings.HasPrefix(mime, "image/") {
			return nil, eris.Errorf("dashboard: logo %s is %s, not an image", p, mime)
		}
		logos = append(logos, Logo{
			Src: template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)),
			Alt: strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
		})
	}
	return logos, nil
}

// Page is the static part of the dashboard: banners, sidebar text and the
// demographic picker.
type Page struct {
	Title        string
	Intro        string
	TopLogos     []Logo
	BottomLogos  []Logo
	Fields       []Option
	DefaultField string
}

// Render writes the full HTML document.
func (p *Page) Render(w io.Writer) error {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, p); err != nil {
		return eris.Wrap(err, "dashboard: render page")
	}
	_, err := buf.WriteTo(w)
	return err
}
